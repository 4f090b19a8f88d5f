package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adces/feedback-engine/internal/feedbacklog"
	"github.com/adces/feedback-engine/internal/narrative"
)

type stubPipeline struct {
	resp narrative.Response
	err  error
	last narrative.Request
}

func (s *stubPipeline) Run(_ context.Context, req narrative.Request) (narrative.Response, error) {
	s.last = req
	return s.resp, s.err
}

type stubRenderer struct {
	lastMarkdown string
	err          error
}

func (s *stubRenderer) Render(_ context.Context, markdown string) ([]byte, error) {
	s.lastMarkdown = markdown
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

func goodResponse() narrative.Response {
	return narrative.Response{
		Result: narrative.Result{
			Strengths:        "One. Two. Three.",
			ImprovementAreas: "One. Two. Three.",
			Recommendations:  "One. Two. Three.",
		},
		Debug: &narrative.Metadata{Mode: narrative.ModeEvidence, BackendCalls: 1},
	}
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	blob, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(blob))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGenerate(t *testing.T) {
	pipe := &stubPipeline{resp: goodResponse()}
	h := NewServer(pipe, Options{})

	rr := postJSON(t, h, "/generate", map[string]any{
		"faculty_name": "Dr. Reyes",
		"averages":     map[string]any{"overall": 4.2},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out narrative.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Strengths != "One. Two. Three." {
		t.Errorf("strengths = %q", out.Strengths)
	}
	if out.Debug != nil {
		t.Error("debug metadata should be stripped when debug echo is off")
	}
	if pipe.last.FacultyName != "Dr. Reyes" {
		t.Errorf("pipeline saw faculty %q", pipe.last.FacultyName)
	}
}

func TestGenerateKeepsDebugWhenEnabled(t *testing.T) {
	pipe := &stubPipeline{resp: goodResponse()}
	h := NewServer(pipe, Options{DebugEcho: true})

	rr := postJSON(t, h, "/generate", map[string]any{})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out narrative.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Debug == nil || out.Debug.BackendCalls != 1 {
		t.Errorf("debug = %+v", out.Debug)
	}
}

func TestGenerateBadJSON(t *testing.T) {
	h := NewServer(&stubPipeline{resp: goodResponse()}, Options{})

	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGeneratePipelineError(t *testing.T) {
	h := NewServer(&stubPipeline{err: errors.New("boom")}, Options{})

	rr := postJSON(t, h, "/generate", map[string]any{})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGenerateMethodNotAllowed(t *testing.T) {
	h := NewServer(&stubPipeline{}, Options{})

	rr := get(t, h, "/generate")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	h := NewServer(&stubPipeline{}, Options{})

	rr := get(t, h, "/health")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var out map[string]bool
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out["ok"] {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestFeedbackRoundTrip(t *testing.T) {
	store, err := feedbacklog.Open(filepath.Join(t.TempDir(), "feedback.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	h := NewServer(&stubPipeline{}, Options{FeedbackLog: store})

	rr := postJSON(t, h, "/feedback", map[string]any{
		"request":             map[string]any{"faculty_name": "Prof. Lim"},
		"generated_strengths": "Strong questioning technique.",
		"accurate":            false,
		"corrected_strengths": "Used concrete examples.",
		"comment":             "too generic",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("post status=%d body=%s", rr.Code, rr.Body.String())
	}
	var posted struct {
		OK bool  `json:"ok"`
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &posted); err != nil {
		t.Fatalf("decode post response: %v", err)
	}
	if !posted.OK || posted.ID == 0 {
		t.Fatalf("post response = %s", rr.Body.String())
	}

	rr = get(t, h, "/feedback?limit=10")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status=%d body=%s", rr.Code, rr.Body.String())
	}
	var listed struct {
		Feedback []feedbacklog.Record `json:"feedback"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Feedback) != 1 {
		t.Fatalf("expected 1 record, got %d", len(listed.Feedback))
	}
	rec := listed.Feedback[0]
	if rec.Request.FacultyName != "Prof. Lim" {
		t.Errorf("faculty = %q", rec.Request.FacultyName)
	}
	if rec.Accurate == nil || *rec.Accurate {
		t.Errorf("accurate = %v, want false", rec.Accurate)
	}
	if rec.CorrectedStrengths != "Used concrete examples." {
		t.Errorf("corrected strengths = %q", rec.CorrectedStrengths)
	}
}

func TestFeedbackListEmpty(t *testing.T) {
	store, err := feedbacklog.Open(filepath.Join(t.TempDir(), "feedback.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	h := NewServer(&stubPipeline{}, Options{FeedbackLog: store})

	rr := get(t, h, "/feedback")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"feedback":[]`) {
		t.Errorf("empty list should encode as []: %s", rr.Body.String())
	}
}

func TestFeedbackDisabledWithoutStore(t *testing.T) {
	h := NewServer(&stubPipeline{}, Options{})

	rr := postJSON(t, h, "/feedback", map[string]any{})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestFeedbackInvalidLimit(t *testing.T) {
	store, err := feedbacklog.Open(filepath.Join(t.TempDir(), "feedback.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	h := NewServer(&stubPipeline{}, Options{FeedbackLog: store})

	rr := get(t, h, "/feedback?limit=nope")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReportPDF(t *testing.T) {
	renderer := &stubRenderer{}
	h := NewServer(&stubPipeline{}, Options{Renderer: renderer})

	rr := postJSON(t, h, "/report-pdf", map[string]any{
		"request": map[string]any{"faculty_name": "Dr. Cho", "subject_observed": "Biology"},
		"result": map[string]any{
			"strengths":         "One. Two. Three.",
			"improvement_areas": "One. Two. Three.",
			"recommendations":   "One. Two. Three.",
		},
		"used_fallback": true,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("content type = %q", got)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("body does not look like a pdf: %q", rr.Body.String()[:20])
	}
	if !strings.Contains(renderer.lastMarkdown, "Dr. Cho") {
		t.Errorf("markdown missing faculty name: %q", renderer.lastMarkdown)
	}
	if !strings.Contains(renderer.lastMarkdown, "structured rating summary") {
		t.Errorf("markdown missing fallback note: %q", renderer.lastMarkdown)
	}
}

func TestReportPDFDisabledWithoutRenderer(t *testing.T) {
	h := NewServer(&stubPipeline{}, Options{})

	rr := postJSON(t, h, "/report-pdf", map[string]any{})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReportPDFRenderError(t *testing.T) {
	h := NewServer(&stubPipeline{}, Options{Renderer: &stubRenderer{err: errors.New("no chromium")}})

	rr := postJSON(t, h, "/report-pdf", map[string]any{})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestDebugEcho(t *testing.T) {
	h := NewServer(&stubPipeline{}, Options{DebugEcho: true})

	rr := postJSON(t, h, "/debug/echo", map[string]any{
		"ratings": map[string]any{
			"communication_skills": map[string]any{
				"1": map[string]any{"rating": 4, "comment": "clear voice"},
			},
		},
		"averages": map[string]any{"overall": 4.7},
		"style":    "bogus",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var out struct {
		Evidence     []string `json:"evidence"`
		EvidenceMode bool     `json:"evidence_mode"`
		Style        string   `json:"style"`
		OverallBand  string   `json:"overall_band"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Evidence) != 1 || !strings.Contains(out.Evidence[0], "clear voice") {
		t.Errorf("evidence = %v", out.Evidence)
	}
	if !out.EvidenceMode {
		t.Error("expected evidence mode with a commented item")
	}
	if out.Style != "standard" {
		t.Errorf("style = %q, want standard for unknown input", out.Style)
	}
	if out.OverallBand != "Excellent" {
		t.Errorf("overall band = %q", out.OverallBand)
	}
}

func TestDebugEchoDisabled(t *testing.T) {
	h := NewServer(&stubPipeline{}, Options{})

	rr := postJSON(t, h, "/debug/echo", map[string]any{})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}
