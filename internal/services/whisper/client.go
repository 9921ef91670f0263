package whisper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// Segment is one recognized phrase with its timing in seconds, relative to
// the start of the transcribed audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Client defines speech recognition behaviour.
type Client interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) ([]Segment, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithModel selects the recognition model.
func WithModel(model string) Option {
	return func(c *CLI) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLanguage pins the transcription language instead of auto-detecting.
func WithLanguage(language string) Option {
	return func(c *CLI) {
		c.language = language
	}
}

// CLI wraps the whisper command-line recognizer.
type CLI struct {
	binary   string
	model    string
	language string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "whisper", model: "base"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Transcribe runs whisper over the audio file and returns phrase timings
// parsed from the JSON transcript it writes into outputDir.
func (c *CLI) Transcribe(ctx context.Context, audioPath, outputDir string) ([]Segment, error) {
	if audioPath == "" {
		return nil, errors.New("audio path required")
	}
	if outputDir == "" {
		return nil, errors.New("output directory required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	args := []string{
		audioPath,
		"--model", c.model,
		"--output_format", "json",
		"--output_dir", outputDir,
	}
	if c.language != "" {
		args = append(args, "--language", c.language)
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	transcriptPath := filepath.Join(outputDir, stem+".json")
	return LoadSegments(transcriptPath)
}

// LoadSegments parses a whisper JSON transcript file.
func LoadSegments(path string) ([]Segment, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var transcript struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", filepath.Base(path), err)
	}

	segments := transcript.Segments[:0:0]
	for _, seg := range transcript.Segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" || seg.End <= seg.Start {
			continue
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("transcript %s has no usable segments", filepath.Base(path))
	}
	return segments, nil
}

var _ Client = (*CLI)(nil)
