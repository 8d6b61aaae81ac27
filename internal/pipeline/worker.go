package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nkotake/seion/internal/boilerplate"
	"github.com/nkotake/seion/internal/cleaner"
	"github.com/nkotake/seion/internal/config"
	"github.com/nkotake/seion/internal/extractor"
	"github.com/nkotake/seion/internal/pagetext"
	"github.com/nkotake/seion/internal/segmenter"
	"github.com/nkotake/seion/internal/structural"
	"github.com/nkotake/seion/internal/voicevox"
)

// Worker processes a single document job: extract pages, detect boilerplate
// across them, clean and segment each page, and optionally synthesize the
// chunks. Per-page failures are recorded on the job and skipped; only a
// failure before any page exists fails the whole job.
type Worker struct {
	cfg       config.Config
	tokenizer segmenter.Tokenizer
	voice     *voicevox.Client
	log       *slog.Logger

	detectCfg  boilerplate.Config
	classifier *structural.Classifier
	cleanOpts  cleaner.Options

	maxConcurrentPages int
	synthRetries       int
}

func NewWorker(cfg config.Config, tok segmenter.Tokenizer, voice *voicevox.Client, log *slog.Logger) *Worker {
	return &Worker{
		cfg:       cfg,
		tokenizer: tok,
		voice:     voice,
		log:       log,
		detectCfg: boilerplate.Config{
			Window:            cfg.TopBottomWindow,
			ThresholdFraction: cfg.BoilerplateThreshold,
			MaxLineLength:     boilerplate.DefaultConfig().MaxLineLength,
		},
		classifier: structural.NewClassifier(cfg.ShortLineCutoff),
		cleanOpts: cleaner.Options{
			StripStructural: cfg.StripStructural,
			Aggressive:      cfg.AggressiveWhitespace,
		},
		maxConcurrentPages: cfg.MaxConcurrentPages,
		synthRetries:       cfg.SynthRetries,
	}
}

// Process runs the full pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Extract pages.
	job.SetStatus(StatusExtracting, "extracting")
	ex, err := extractor.ForFile(job.Filename, w.cfg.PDFFallbackPdftotext)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	pages, err := ex.Extract(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("extraction failed", "error", err)
		job.AddError(fmt.Sprintf("extract: %s", err))
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	if len(pages) == 0 {
		log.Warn("no pages extracted")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "extracting")
		return
	}
	job.SetTotalPages(len(pages))
	log.Info("extracted pages", "pages", len(pages))

	// Phase 2: Detect recurring boilerplate over the whole page set.
	job.SetStatus(StatusDetecting, "detecting")
	set := boilerplate.Detect(pages, w.detectCfg)
	log.Info("boilerplate detected", "signatures", set.Size())

	// Phase 3: Clean and segment pages with bounded concurrency.
	job.SetStatus(StatusProcessing, "processing")
	seg, err := w.segmenterFor(job)
	if err != nil {
		log.Error("bad segmentation options", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "processing")
		return
	}

	type pageOutcome struct {
		result PageResult
		err    error
	}
	results := make(chan pageOutcome, len(pages))
	sem := make(chan struct{}, w.maxConcurrentPages)

	for _, page := range pages {
		sem <- struct{}{}
		go func(page pagetext.Page) {
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					results <- pageOutcome{err: fmt.Errorf("page %d: panic: %v", page.Index, r)}
				}
			}()
			text := cleaner.Clean(page, set, w.classifier, w.cleanOpts)
			if text == "" {
				results <- pageOutcome{}
				return
			}
			results <- pageOutcome{result: PageResult{
				Index:  page.Index,
				Chunks: seg.Segment(text),
			}}
		}(page)
	}

	var pageResults []PageResult
	hadErrors := false
	for range pages {
		r := <-results
		job.IncrPagesProcessed()
		if r.err != nil {
			log.Error("page processing failed", "error", r.err)
			job.AddError(r.err.Error())
			hadErrors = true
			continue
		}
		if len(r.result.Chunks) == 0 {
			continue
		}
		job.AddChunks(len(r.result.Chunks), 0)
		pageResults = append(pageResults, r.result)
	}
	// Fan-in arrives in completion order; restore page order.
	sort.Slice(pageResults, func(i, j int) bool {
		return pageResults[i].Index < pageResults[j].Index
	})
	log.Info("pages processed", "kept", len(pageResults), "errors", hadErrors)

	if len(pageResults) == 0 {
		if hadErrors {
			job.SetStatus(StatusFailed, "processing")
		} else {
			job.AddError("all pages cleaned to empty")
			job.SetStatus(StatusFailed, "processing")
		}
		job.SetResults(nil)
		return
	}

	// Phase 4: Synthesize chunks when requested and an engine is wired.
	if job.Synthesize && w.voice != nil {
		job.SetStatus(StatusSynthesizing, "synthesizing")
		if synthErrs := w.synthesize(ctx, job, pageResults); synthErrs {
			hadErrors = true
		}
	}

	job.SetResults(pageResults)
	if hadErrors {
		job.SetStatus(StatusPartial, "done")
	} else {
		job.SetStatus(StatusCompleted, "done")
	}
}

// segmenterFor builds the segmenter for a job, honoring the per-job strategy
// override.
func (w *Worker) segmenterFor(job *Job) (*segmenter.Segmenter, error) {
	name := job.Strategy
	if name == "" {
		name = w.cfg.SegmentStrategy
	}
	strategy, err := segmenter.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	return segmenter.New(strategy, w.cfg.SegmenterConfig(), w.tokenizer, w.log)
}

// synthesize renders every chunk through the engine, sequentially so a
// single-instance engine is not flooded. It reports whether any chunk
// failed; failures are recorded and skipped.
func (w *Worker) synthesize(ctx context.Context, job *Job, pageResults []PageResult) bool {
	log := w.log.With("job_id", job.ID)
	name := job.Speaker
	if name == "" {
		name = w.cfg.DefaultSpeaker
	}
	speaker, err := voicevox.ResolveSpeaker(name)
	if err != nil {
		log.Error("bad speaker", "error", err)
		job.AddError(err.Error())
		return true
	}

	hadErrors := false
	for i := range pageResults {
		for _, chunk := range pageResults[i].Chunks {
			wav, err := w.synthesizeChunk(ctx, chunk, speaker)
			if err != nil {
				log.Error("synthesis failed", "page", pageResults[i].Index, "error", err)
				job.AddError(fmt.Sprintf("page %d: synth: %s", pageResults[i].Index, err))
				hadErrors = true
				if ctx.Err() != nil {
					return true
				}
				continue
			}
			pageResults[i].AudioBytes += int64(len(wav))
			job.AddChunks(0, 1)
		}
	}
	return hadErrors
}

func (w *Worker) synthesizeChunk(ctx context.Context, chunk string, speaker int) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= w.synthRetries; attempt++ {
		var wav []byte
		wav, lastErr = w.voice.SynthesizeText(ctx, chunk, speaker, voicevox.QueryOptions{})
		if lastErr == nil {
			return wav, nil
		}
		if !IsRetryable(lastErr) {
			return nil, lastErr
		}
		w.log.Warn("retryable synthesis error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
