package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nkotake/seion/internal/segmenter"
)

type Config struct {
	Port string

	// Auth. Empty disables authentication for local use.
	APIKey string

	// VOICEVOX engine connection
	VoicevoxURL     string
	VoicevoxTimeout time.Duration
	DefaultSpeaker  string
	SynthRetries    int

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentPages int

	// Upload limits
	MaxUploadBytes int64

	// Boilerplate detection
	TopBottomWindow      int
	BoilerplateThreshold float64

	// Cleaning
	ShortLineCutoff      int
	StripStructural      bool
	AggressiveWhitespace bool

	// Segmentation
	SegmentStrategy string
	MaxLineLength   int
	MinLineLength   int

	// Job state
	JobTTL time.Duration

	// Stats
	StatsWindow time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("SEION_API_KEY"),

		VoicevoxURL:     envOr("VOICEVOX_URL", "http://localhost:50021"),
		VoicevoxTimeout: envDuration("VOICEVOX_TIMEOUT", 60*time.Second),
		DefaultSpeaker:  envOr("DEFAULT_SPEAKER", "zundamon"),
		SynthRetries:    envInt("SYNTH_RETRIES", 3),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentPages: envInt("MAX_CONCURRENT_PAGES", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		TopBottomWindow:      envInt("TOP_BOTTOM_WINDOW", 3),
		BoilerplateThreshold: envFloat("BOILERPLATE_THRESHOLD", 0.4),

		ShortLineCutoff:      envInt("SHORT_LINE_CUTOFF", 20),
		StripStructural:      envBool("STRIP_STRUCTURAL", true),
		AggressiveWhitespace: envBool("AGGRESSIVE_WHITESPACE", true),

		SegmentStrategy: envOr("SEGMENT_STRATEGY", "punctuation"),
		MaxLineLength:   envInt("MAX_LINE_LENGTH", 45),
		MinLineLength:   envInt("MIN_LINE_LENGTH", 15),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentPages <= 0 {
		cfg.MaxConcurrentPages = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.SynthRetries < 0 {
		cfg.SynthRetries = 3
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.TopBottomWindow <= 0 {
		return fmt.Errorf("TOP_BOTTOM_WINDOW must be positive, got %d", c.TopBottomWindow)
	}
	if c.BoilerplateThreshold <= 0 || c.BoilerplateThreshold > 1 {
		return fmt.Errorf("BOILERPLATE_THRESHOLD must be in (0,1], got %g", c.BoilerplateThreshold)
	}
	if c.ShortLineCutoff <= 0 {
		return fmt.Errorf("SHORT_LINE_CUTOFF must be positive, got %d", c.ShortLineCutoff)
	}
	if _, err := segmenter.ParseStrategy(c.SegmentStrategy); err != nil {
		return fmt.Errorf("SEGMENT_STRATEGY: %w", err)
	}
	if err := c.SegmenterConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// SegmenterConfig maps the line-length settings onto the segmenter.
func (c Config) SegmenterConfig() segmenter.Config {
	return segmenter.Config{
		MaxLineLength: c.MaxLineLength,
		MinLineLength: c.MinLineLength,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
