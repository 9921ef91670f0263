package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Errorf("resolved path %q, want %q", resolved, path)
	}
	if cfg.TTS.Voice != "en-US-AriaNeural" {
		t.Errorf("default voice = %q", cfg.TTS.Voice)
	}
	if cfg.Captions.MaxLineChars != 22 {
		t.Errorf("default max_line_chars = %d", cfg.Captions.MaxLineChars)
	}
	if cfg.Reconcile.SegmentToleranceSeconds != 0.1 {
		t.Errorf("default segment tolerance = %v", cfg.Reconcile.SegmentToleranceSeconds)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[tts]
voice = "en-GB-RyanNeural"
concurrency = 2

[captions]
format = "srt"
burn_in = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
	if cfg.TTS.Voice != "en-GB-RyanNeural" {
		t.Errorf("voice = %q", cfg.TTS.Voice)
	}
	if cfg.TTS.Concurrency != 2 {
		t.Errorf("concurrency = %d", cfg.TTS.Concurrency)
	}
	if cfg.Captions.Format != "srt" || cfg.Captions.BurnIn {
		t.Errorf("captions = %+v", cfg.Captions)
	}
	// Unset sections keep defaults.
	if cfg.Output.Width != 1920 || cfg.Output.Height != 1080 {
		t.Errorf("output = %+v", cfg.Output)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty voice", func(c *config.Config) { c.TTS.Voice = "" }, "tts.voice"},
		{"bad caption format", func(c *config.Config) { c.Captions.Format = "vtt" }, "captions.format"},
		{"odd dimensions", func(c *config.Config) { c.Output.Width = 1921 }, "dimensions"},
		{"crf out of range", func(c *config.Config) { c.Output.CRF = 99 }, "crf"},
		{"heartbeat ordering", func(c *config.Config) { c.Workflow.HeartbeatTimeout = 5 }, "heartbeat_timeout"},
	}
	for _, tc := range cases {
		cfg := config.Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q missing %q", tc.name, err, tc.want)
		}
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("Load sample: exists=%v err=%v", exists, err)
	}
}
