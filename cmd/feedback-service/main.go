package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/adces/feedback-engine/internal/config"
	"github.com/adces/feedback-engine/internal/embedding"
	"github.com/adces/feedback-engine/internal/feedbacklog"
	"github.com/adces/feedback-engine/internal/httpapi"
	"github.com/adces/feedback-engine/internal/narrative"
)

func main() {
	addrFlag := flag.String("addr", "", "listen address (overrides FEEDBACK_ADDR)")
	dbFlag := flag.String("db", "", "path to SQLite feedback log (overrides FEEDBACK_FEEDBACK_DB_PATH)")
	noPDF := flag.Bool("no-pdf", false, "disable the /report-pdf endpoint")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}
	if *dbFlag != "" {
		cfg.FeedbackDBPath = *dbFlag
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	var generator narrative.TextGenerator
	if apiKey != "" {
		g, err := narrative.NewAnthropicGeneratorWithKey(apiKey, cfg.LLMModel)
		if err != nil {
			log.Fatalf("init generator: %v", err)
		}
		generator = g
		log.Printf("feedback-service generator model=%s", g.ModelName())
	} else {
		// Without a backend every request takes the template path.
		log.Printf("feedback-service generator disabled (ANTHROPIC_API_KEY unset), using templates")
	}

	var embedder embedding.Embedder
	if geminiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); geminiKey != "" {
		e, err := embedding.NewGenAIEmbedder(ctx, geminiKey, cfg.EmbeddingModel)
		if err != nil {
			log.Printf("warning: embedder init failed, evidence falls back to heuristic order: %v", err)
		} else {
			embedder = e
			log.Printf("feedback-service embedder model=%s", e.Name())
		}
	} else {
		log.Printf("feedback-service embedder disabled (GEMINI_API_KEY unset), using heuristic order")
	}

	pipeline := narrative.NewPipeline(generator, embedder, narrative.Config{
		BackendTimeout:  cfg.BackendTimeout(),
		MinChars:        cfg.MinNarrativeChars,
		MinSectionChars: cfg.MinSectionChars,
		Denylist:        cfg.Denylist,
		Thresholds:      cfg.Thresholds,
	})

	store, err := feedbacklog.Open(cfg.FeedbackDBPath)
	if err != nil {
		log.Fatalf("open feedback log (%s): %v", cfg.FeedbackDBPath, err)
	}
	defer store.Close()
	log.Printf("feedback-service feedback log at %s", cfg.FeedbackDBPath)

	opts := httpapi.Options{
		FeedbackLog: store,
		DebugEcho:   cfg.DebugEcho,
	}
	if !*noPDF {
		opts.Renderer = httpapi.NewChromiumPDFRenderer()
	}

	handler := httpapi.NewServer(pipeline, opts)

	log.Printf("feedback-service listening on %s", cfg.Addr)
	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
