package edgetts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var commandContext = exec.CommandContext

// Client defines narration synthesis behaviour.
type Client interface {
	Synthesize(ctx context.Context, req Request) error
}

// Request describes one synthesis invocation.
type Request struct {
	// Text is the narration to speak. Required.
	Text string
	// OutputPath receives the synthesized audio (mp3). Required.
	OutputPath string
	// Voice overrides the client default voice when set.
	Voice string
	// Rate overrides the client default rate when set (e.g. "+10%").
	Rate string
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

// WithVoice sets the default voice.
func WithVoice(voice string) Option {
	return func(c *CLI) {
		if voice != "" {
			c.voice = voice
		}
	}
}

// WithRate sets the default speaking rate.
func WithRate(rate string) Option {
	return func(c *CLI) {
		if rate != "" {
			c.rate = rate
		}
	}
}

// CLI wraps the edge-tts command-line synthesizer.
type CLI struct {
	binary string
	voice  string
	rate   string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "edge-tts", voice: "en-US-AriaNeural", rate: "+0%"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Synthesize runs edge-tts and verifies the output file was produced.
func (c *CLI) Synthesize(ctx context.Context, req Request) error {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return errors.New("narration text required")
	}
	if req.OutputPath == "" {
		return errors.New("output path required")
	}

	voice := req.Voice
	if voice == "" {
		voice = c.voice
	}
	rate := req.Rate
	if rate == "" {
		rate = c.rate
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	args := []string{
		"--text", text,
		"--voice", voice,
		"--rate", rate,
		"--write-media", req.OutputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("edge-tts failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil {
		return fmt.Errorf("edge-tts produced no output: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("edge-tts wrote empty file %s", req.OutputPath)
	}
	return nil
}

// Voice is one entry from the synthesizer's voice catalog.
type Voice struct {
	Name          string
	Gender        string
	Categories    string
	Personalities string
}

// Locale extracts the language-region prefix from a voice name, e.g.
// "ko-KR" from "ko-KR-SunHiNeural". Names without a region yield "".
func (v Voice) Locale() string {
	parts := strings.SplitN(v.Name, "-", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[0] + "-" + parts[1]
}

// ListVoices queries the synthesizer for its available voices.
func (c *CLI) ListVoices(ctx context.Context) ([]Voice, error) {
	cmd := commandContext(ctx, c.binary, "--list-voices") //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("edge-tts failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	voices := parseVoiceTable(string(output))
	if len(voices) == 0 {
		return nil, errors.New("edge-tts returned no voices")
	}
	return voices, nil
}

var voiceColumnRe = regexp.MustCompile(`\s{2,}`)

// parseVoiceTable reads the aligned-column table --list-voices prints:
// a Name/Gender/ContentCategories/VoicePersonalities header, a dashed
// separator, then one voice per line.
func parseVoiceTable(output string) []Voice {
	var voices []Voice
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Name") || strings.HasPrefix(line, "-") {
			continue
		}
		fields := voiceColumnRe.Split(line, 4)
		voice := Voice{Name: fields[0]}
		if len(fields) > 1 {
			voice.Gender = fields[1]
		}
		if len(fields) > 2 {
			voice.Categories = fields[2]
		}
		if len(fields) > 3 {
			voice.Personalities = fields[3]
		}
		voices = append(voices, voice)
	}
	return voices
}

var _ Client = (*CLI)(nil)
