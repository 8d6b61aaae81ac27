package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected default port 8090, got %q", cfg.Port)
	}
	if cfg.VoicevoxURL != "http://localhost:50021" {
		t.Errorf("got engine URL %q", cfg.VoicevoxURL)
	}
	if cfg.TopBottomWindow != 3 || cfg.BoilerplateThreshold != 0.4 {
		t.Errorf("got window=%d threshold=%g", cfg.TopBottomWindow, cfg.BoilerplateThreshold)
	}
	if cfg.MaxLineLength != 45 || cfg.MinLineLength != 15 {
		t.Errorf("got max=%d min=%d", cfg.MaxLineLength, cfg.MinLineLength)
	}
	if cfg.SegmentStrategy != "punctuation" {
		t.Errorf("got strategy %q", cfg.SegmentStrategy)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SEGMENT_STRATEGY", "hybrid")
	t.Setenv("MAX_LINE_LENGTH", "60")
	t.Setenv("BOILERPLATE_THRESHOLD", "0.5")
	t.Setenv("STRIP_STRUCTURAL", "false")
	t.Setenv("JOB_TTL", "30m")

	cfg := Load()
	if cfg.SegmentStrategy != "hybrid" {
		t.Errorf("got strategy %q", cfg.SegmentStrategy)
	}
	if cfg.MaxLineLength != 60 {
		t.Errorf("got max %d", cfg.MaxLineLength)
	}
	if cfg.BoilerplateThreshold != 0.5 {
		t.Errorf("got threshold %g", cfg.BoilerplateThreshold)
	}
	if cfg.StripStructural {
		t.Error("expected structural stripping off")
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("got ttl %v", cfg.JobTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("overridden config must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.BoilerplateThreshold = 0 },
		func(c *Config) { c.BoilerplateThreshold = 1.5 },
		func(c *Config) { c.TopBottomWindow = 0 },
		func(c *Config) { c.ShortLineCutoff = -1 },
		func(c *Config) { c.SegmentStrategy = "random" },
		func(c *Config) { c.MinLineLength = 100 },
	}
	for i, mutate := range cases {
		cfg := Load()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected a validation error", i)
		}
	}
}
