package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "MAX_CHUNK_TOKENS", "UNIT_DELAY", "WORKER_COUNT",
		"MAX_QUEUE_SIZE", "MAX_UPLOAD_BYTES", "JOB_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("expected default port 8090, got %q", cfg.Port)
	}
	if cfg.MaxChunkTokens != 4000 {
		t.Errorf("expected default budget 4000, got %d", cfg.MaxChunkTokens)
	}
	if cfg.UnitDelay != time.Second {
		t.Errorf("expected default unit delay 1s, got %v", cfg.UnitDelay)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected default worker count 2, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected default job TTL 1h, got %v", cfg.JobTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_CHUNK_TOKENS", "2500")
	t.Setenv("UNIT_DELAY", "250ms")
	t.Setenv("WORKER_COUNT", "5")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.MaxChunkTokens != 2500 {
		t.Errorf("expected budget 2500, got %d", cfg.MaxChunkTokens)
	}
	if cfg.UnitDelay != 250*time.Millisecond {
		t.Errorf("expected unit delay 250ms, got %v", cfg.UnitDelay)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("expected worker count 5, got %d", cfg.WorkerCount)
	}
}

func TestLoadClampsInvalidValues(t *testing.T) {
	t.Setenv("MAX_CHUNK_TOKENS", "-100")
	t.Setenv("WORKER_COUNT", "0")
	t.Setenv("UNIT_DELAY", "not-a-duration")

	cfg := Load()

	if cfg.MaxChunkTokens != 4000 {
		t.Errorf("negative budget should fall back to 4000, got %d", cfg.MaxChunkTokens)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("zero workers should fall back to 2, got %d", cfg.WorkerCount)
	}
	if cfg.UnitDelay != time.Second {
		t.Errorf("unparseable delay should fall back to 1s, got %v", cfg.UnitDelay)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when service API key is missing")
	}

	cfg.ServiceAPIKey = "svc-key"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when generation API key is missing")
	}

	cfg.AnthropicAPIKey = "gen-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}
