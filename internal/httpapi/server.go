// Package httpapi exposes the narrative generation pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/adces/feedback-engine/internal/feedbacklog"
	"github.com/adces/feedback-engine/internal/narrative"
)

// Generator runs the narrative pipeline for one observation request.
type Generator interface {
	Run(ctx context.Context, req narrative.Request) (narrative.Response, error)
}

// Renderer turns a report markdown document into a PDF.
type Renderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

type Server struct {
	pipeline  Generator
	log       *feedbacklog.Store
	renderer  Renderer
	debugEcho bool
}

// Options carry optional server dependencies. A nil feedback store disables
// the /feedback endpoints and a nil renderer disables /report-pdf.
type Options struct {
	FeedbackLog *feedbacklog.Store
	Renderer    Renderer
	DebugEcho   bool
}

func NewServer(pipeline Generator, opts Options) http.Handler {
	s := &Server{
		pipeline:  pipeline,
		log:       opts.FeedbackLog,
		renderer:  opts.Renderer,
		debugEcho: opts.DebugEcho,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", s.handleGenerate)
	mux.HandleFunc("/feedback", s.handleFeedback)
	mux.HandleFunc("/report-pdf", s.handleReportPDF)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/debug/echo", s.handleDebugEcho)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"ok":    false,
		"error": message,
	})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	var req narrative.Request
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	resp, err := s.pipeline.Run(r.Context(), req)
	if err != nil {
		log.Printf("httpapi generate_failed err=%q", err)
		writeError(w, http.StatusInternalServerError, "generation failed")
		return
	}
	if !s.debugEcho {
		resp.Debug = nil
	}
	writeJSON(w, http.StatusOK, resp)
}

type feedbackRequest struct {
	Request narrative.Request `json:"request"`

	GeneratedStrengths        string `json:"generated_strengths"`
	GeneratedImprovementAreas string `json:"generated_improvement_areas"`
	GeneratedRecommendations  string `json:"generated_recommendations"`

	Accurate *bool `json:"accurate"`

	CorrectedStrengths        string `json:"corrected_strengths"`
	CorrectedImprovementAreas string `json:"corrected_improvement_areas"`
	CorrectedRecommendations  string `json:"corrected_recommendations"`

	Comment string `json:"comment"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if s.log == nil {
		writeError(w, http.StatusNotFound, "feedback log disabled")
		return
	}
	switch r.Method {
	case http.MethodPost:
		blob, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "read body: "+err.Error())
			return
		}
		var req feedbackRequest
		if err := json.Unmarshal(blob, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
			return
		}
		id, err := s.log.Append(feedbacklog.Record{
			Request:                   req.Request,
			GeneratedStrengths:        req.GeneratedStrengths,
			GeneratedImprovementAreas: req.GeneratedImprovementAreas,
			GeneratedRecommendations:  req.GeneratedRecommendations,
			Accurate:                  req.Accurate,
			CorrectedStrengths:        req.CorrectedStrengths,
			CorrectedImprovementAreas: req.CorrectedImprovementAreas,
			CorrectedRecommendations:  req.CorrectedRecommendations,
			Comment:                   req.Comment,
		})
		if err != nil {
			log.Printf("httpapi feedback_append_failed err=%q", err)
			writeError(w, http.StatusInternalServerError, "could not record feedback")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
	case http.MethodGet:
		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = v
		}
		records, err := s.log.List(limit)
		if err != nil {
			log.Printf("httpapi feedback_list_failed err=%q", err)
			writeError(w, http.StatusInternalServerError, "could not list feedback")
			return
		}
		if records == nil {
			records = []feedbacklog.Record{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"feedback": records})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type reportPDFRequest struct {
	Request narrative.Request `json:"request"`
	Result  narrative.Result  `json:"result"`

	// UsedFallback marks narratives produced by the template path so the
	// report carries the provenance note.
	UsedFallback bool `json:"used_fallback"`
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if s.renderer == nil {
		writeError(w, http.StatusNotFound, "pdf rendering disabled")
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	var req reportPDFRequest
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	resp := narrative.Response{Result: req.Result}
	if req.UsedFallback {
		resp.Debug = &narrative.Metadata{FallbackUsed: true}
	}
	markdown := narrative.BuildReportMarkdown(req.Request, resp)
	pdf, err := s.renderer.Render(r.Context(), markdown)
	if err != nil {
		log.Printf("httpapi report_pdf_failed err=%q", err)
		writeError(w, http.StatusInternalServerError, "pdf rendering failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="observation-feedback.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleDebugEcho reflects the normalized request back so operators can see
// how a ratings payload flattens without spending a backend call.
func (s *Server) handleDebugEcho(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if !s.debugEcho {
		writeError(w, http.StatusNotFound, "debug echo disabled")
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	var req narrative.Request
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	items := narrative.FlattenRatings(req.Ratings)
	fragments := make([]string, 0, len(items))
	for _, item := range items {
		fragments = append(fragments, item.Fragment())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"request":       req,
		"evidence":      fragments,
		"evidence_mode": narrative.AnyComments(items),
		"style":         string(narrative.NormalizeStyle(req.Style)),
		"overall_band":  string(narrative.DefaultThresholds().Band(req.Averages.Overall)),
	})
}
