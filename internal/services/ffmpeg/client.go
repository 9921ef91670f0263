package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Settings holds the encode parameters shared by every clip and by the final
// concat output. All clips must use identical settings so the concat demuxer
// can stream-copy them.
type Settings struct {
	Width        int
	Height       int
	FPS          int
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string
}

// DefaultSettings returns the encode parameters used when nothing overrides
// them.
func DefaultSettings() Settings {
	return Settings{
		Width:        1920,
		Height:       1080,
		FPS:          30,
		VideoCodec:   "libx264",
		Preset:       "medium",
		CRF:          23,
		AudioCodec:   "aac",
		AudioBitrate: "192k",
	}
}

func (s Settings) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid output resolution %dx%d", s.Width, s.Height)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("invalid output fps %d", s.FPS)
	}
	return nil
}

// scaleFilter fits any source into the output frame: downscale to fit, then
// letterbox with black bars so aspect ratio is preserved.
func (s Settings) scaleFilter() string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black",
		s.Width, s.Height, s.Width, s.Height,
	)
}

func (s Settings) encodeArgs() []string {
	return []string{
		"-c:v", s.VideoCodec,
		"-preset", s.Preset,
		"-crf", strconv.Itoa(s.CRF),
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(s.FPS),
		"-c:a", s.AudioCodec,
		"-b:a", s.AudioBitrate,
	}
}

// Client defines media assembly behaviour.
type Client interface {
	BuildImageClip(ctx context.Context, req ImageClipRequest) error
	BuildVideoClip(ctx context.Context, req VideoClipRequest) error
	Concat(ctx context.Context, clipPaths []string, outputPath string) error
	BurnCaptions(ctx context.Context, req BurnRequest) error
}

// ImageClipRequest builds a scene clip from a still image and its narration.
// An empty AudioPath produces a silent clip of the requested duration, so a
// scene without narration still carries an audio track the concat step can
// join with the narrated ones.
type ImageClipRequest struct {
	ImagePath  string
	AudioPath  string
	Duration   float64
	OutputPath string
	Settings   Settings
}

// VideoClipRequest builds a scene clip from video footage and its narration.
// TrimSeconds bounds how much source footage is used, counted from the start
// of the file. FreezeSeconds extends the last frame when the footage runs out
// before the narration; PadSeconds extends the narration with silence up to
// the footage length when the footage outlasts it. At most one of the two is
// non-zero.
type VideoClipRequest struct {
	VideoPath     string
	AudioPath     string
	TrimSeconds   float64
	FreezeSeconds float64
	PadSeconds    float64
	OutputPath    string
	Settings      Settings
}

// BurnRequest renders a caption file into the video stream.
type BurnRequest struct {
	VideoPath   string
	CaptionPath string
	OutputPath  string
	Settings    Settings
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

// CLI wraps the ffmpeg command line.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

func (c *CLI) run(ctx context.Context, args []string) error {
	full := append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)
	cmd := commandContext(ctx, c.binary, full...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// BuildImageClip loops a still image for the narration duration and muxes
// the narration under it.
func (c *CLI) BuildImageClip(ctx context.Context, req ImageClipRequest) error {
	if req.ImagePath == "" || req.OutputPath == "" {
		return errors.New("image and output paths required")
	}
	if req.Duration <= 0 {
		return fmt.Errorf("invalid clip duration %v", req.Duration)
	}
	if err := req.Settings.validate(); err != nil {
		return err
	}

	args := []string{
		"-loop", "1",
		"-t", formatSeconds(req.Duration),
		"-i", req.ImagePath,
	}
	if req.AudioPath != "" {
		args = append(args, "-i", req.AudioPath)
	} else {
		args = append(args,
			"-f", "lavfi",
			"-t", formatSeconds(req.Duration),
			"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
		)
	}
	args = append(args,
		"-vf", req.Settings.scaleFilter(),
		"-shortest",
	)
	args = append(args, req.Settings.encodeArgs()...)
	args = append(args, req.OutputPath)
	return c.run(ctx, args)
}

// BuildVideoClip trims the footage, applies any freeze or pad correction, and
// muxes the narration as the only audio track.
func (c *CLI) BuildVideoClip(ctx context.Context, req VideoClipRequest) error {
	if req.VideoPath == "" || req.AudioPath == "" || req.OutputPath == "" {
		return errors.New("video, audio and output paths required")
	}
	if req.TrimSeconds <= 0 {
		return fmt.Errorf("invalid trim duration %v", req.TrimSeconds)
	}
	if req.FreezeSeconds > 0 && req.PadSeconds > 0 {
		return errors.New("freeze and pad are mutually exclusive")
	}
	if err := req.Settings.validate(); err != nil {
		return err
	}

	videoChain := []string{
		fmt.Sprintf("trim=duration=%s", formatSeconds(req.TrimSeconds)),
		"setpts=PTS-STARTPTS",
		req.Settings.scaleFilter(),
		fmt.Sprintf("fps=%d", req.Settings.FPS),
	}
	if req.FreezeSeconds > 0 {
		videoChain = append(videoChain,
			fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%s", formatSeconds(req.FreezeSeconds)))
	}

	audioChain := "anull"
	if req.PadSeconds > 0 {
		// Pad the narration up to the footage length so clip streams match.
		audioChain = fmt.Sprintf("apad=whole_dur=%s", formatSeconds(req.TrimSeconds))
	}

	filter := fmt.Sprintf("[0:v]%s[v];[1:a]%s[a]", strings.Join(videoChain, ","), audioChain)

	args := []string{
		"-i", req.VideoPath,
		"-i", req.AudioPath,
		"-filter_complex", filter,
		"-map", "[v]",
		"-map", "[a]",
	}
	args = append(args, req.Settings.encodeArgs()...)
	args = append(args, req.OutputPath)
	return c.run(ctx, args)
}

// Concat joins uniformly-encoded clips with the concat demuxer, stream
// copying rather than re-encoding.
func (c *CLI) Concat(ctx context.Context, clipPaths []string, outputPath string) error {
	if len(clipPaths) == 0 {
		return errors.New("no clips to concatenate")
	}
	if outputPath == "" {
		return errors.New("output path required")
	}

	listPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "_concat.txt"
	var list strings.Builder
	for _, clip := range clipPaths {
		escaped := strings.ReplaceAll(clip, "'", `'\''`)
		fmt.Fprintf(&list, "file '%s'\n", escaped)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
	return c.run(ctx, args)
}

// BurnCaptions re-encodes the video with the caption file rendered into the
// picture. The audio track is copied untouched.
func (c *CLI) BurnCaptions(ctx context.Context, req BurnRequest) error {
	if req.VideoPath == "" || req.CaptionPath == "" || req.OutputPath == "" {
		return errors.New("video, caption and output paths required")
	}

	filter := "subtitles=" + escapeFilterPath(req.CaptionPath)
	if strings.EqualFold(filepath.Ext(req.CaptionPath), ".ass") {
		filter = "ass=" + escapeFilterPath(req.CaptionPath)
	}

	args := []string{
		"-i", req.VideoPath,
		"-vf", filter,
		"-c:v", req.Settings.VideoCodec,
		"-preset", req.Settings.Preset,
		"-crf", strconv.Itoa(req.Settings.CRF),
		"-c:a", "copy",
		req.OutputPath,
	}
	return c.run(ctx, args)
}

// escapeFilterPath quotes characters ffmpeg's filter parser treats specially.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
	)
	return replacer.Replace(path)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

var _ Client = (*CLI)(nil)
