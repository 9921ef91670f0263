package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/services"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.input); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = t.TempDir()
	cfgVal.Logging.Format = "json"

	logger, err := NewFromConfig(&cfgVal)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("hello from the test")

	data, err := os.ReadFile(filepath.Join(cfgVal.Paths.LogDir, "storyreel.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "hello from the test" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Errorf("level = %v", record["level"])
	}
}

func TestWithContextCarriesJobFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, new(slog.LevelVar)))

	ctx := services.WithJobID(context.Background(), 41)
	ctx = services.WithStage(ctx, "narrating")
	ctx = services.WithRequestID(ctx, "req-7")

	WithContext(ctx, logger).Info("stage event")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if record[FieldJobID] != float64(41) {
		t.Errorf("job_id = %v", record[FieldJobID])
	}
	if record[FieldStage] != "narrating" {
		t.Errorf("stage = %v", record[FieldStage])
	}
	if record[FieldCorrelationID] != "req-7" {
		t.Errorf("correlation_id = %v", record[FieldCorrelationID])
	}
}

func TestWithContextNilLoggerIsSafe(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	logger.Info("should not panic")
}
