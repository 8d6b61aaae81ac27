package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nkotake/seion/internal/config"
	"github.com/nkotake/seion/internal/segmenter"
	"github.com/nkotake/seion/internal/voicevox"
)

// Orchestrator manages the document processing pipeline.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	tokenizer segmenter.Tokenizer
	voice     *voicevox.Client
	log       *slog.Logger
	cfg       config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. The tokenizer and voice client may
// each be nil; the affected features degrade per the worker's rules.
func NewOrchestrator(cfg config.Config, tok segmenter.Tokenizer, voice *voicevox.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		tokenizer: tok,
		voice:     voice,
		log:       log,
		cfg:       cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.cfg, o.tokenizer, o.voice, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// VoiceClient returns the engine client for direct use by API handlers; it
// may be nil when synthesis is not configured.
func (o *Orchestrator) VoiceClient() *voicevox.Client {
	return o.voice
}

// Tokenizer returns the shared morphological tokenizer, which may be nil.
func (o *Orchestrator) Tokenizer() segmenter.Tokenizer {
	return o.tokenizer
}

// Config returns the pipeline configuration.
func (o *Orchestrator) Config() config.Config {
	return o.cfg
}
