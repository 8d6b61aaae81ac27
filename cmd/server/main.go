package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nkotake/seion/internal/api"
	"github.com/nkotake/seion/internal/config"
	"github.com/nkotake/seion/internal/morph"
	"github.com/nkotake/seion/internal/pipeline"
	"github.com/nkotake/seion/internal/segmenter"
	"github.com/nkotake/seion/internal/voicevox"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The analyzer loads its dictionary at startup; failure degrades the
	// morphological strategy to the punctuation cascade instead of aborting.
	var tok segmenter.Tokenizer
	if analyzer, err := morph.New(); err != nil {
		log.Warn("morphological analyzer unavailable", "error", err)
	} else {
		tok = analyzer
	}

	stats := voicevox.NewSynthStats(cfg.StatsWindow)
	voice := voicevox.NewClient(cfg.VoicevoxURL, cfg.VoicevoxTimeout, stats)
	probeCtx, probeCancel := context.WithTimeout(ctx, 5*time.Second)
	if version, err := voice.Version(probeCtx); err != nil {
		log.Warn("voicevox engine unreachable, synthesis will be retried per job", "url", cfg.VoicevoxURL, "error", err)
	} else {
		log.Info("voicevox engine connected", "version", version)
	}
	probeCancel()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, tok, voice, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		voice.Close()
	}()

	log.Info("starting seion", "port", cfg.Port, "strategy", cfg.SegmentStrategy)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
