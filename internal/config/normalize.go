package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTTS()
	c.normalizeWhisper()
	c.normalizeCaptions()
	c.normalizeReconcile()
	c.normalizeOutput()
	c.normalizeFFmpeg()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTTS() {
	if strings.TrimSpace(c.TTS.Binary) == "" {
		c.TTS.Binary = defaultTTSBinary
	}
	c.TTS.Voice = strings.TrimSpace(c.TTS.Voice)
	c.TTS.Rate = strings.TrimSpace(c.TTS.Rate)
	if c.TTS.Concurrency <= 0 {
		c.TTS.Concurrency = defaultTTSConcurrency
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
}

func (c *Config) normalizeWhisper() {
	if strings.TrimSpace(c.Whisper.Binary) == "" {
		c.Whisper.Binary = defaultWhisperBinary
	}
	if strings.TrimSpace(c.Whisper.Model) == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Language = strings.TrimSpace(c.Whisper.Language)
	if c.Whisper.TimeoutSeconds <= 0 {
		c.Whisper.TimeoutSeconds = defaultWhisperTimeout
	}
}

func (c *Config) normalizeCaptions() {
	c.Captions.Format = strings.ToLower(strings.TrimSpace(c.Captions.Format))
	if c.Captions.Format == "" {
		c.Captions.Format = defaultCaptionFormat
	}
	if c.Captions.MaxLineChars <= 0 {
		c.Captions.MaxLineChars = defaultMaxLineChars
	}
	if c.Captions.MinRemainderChars <= 0 {
		c.Captions.MinRemainderChars = defaultMinRemainderChars
	}
}

func (c *Config) normalizeReconcile() {
	if c.Reconcile.SegmentToleranceSeconds <= 0 {
		c.Reconcile.SegmentToleranceSeconds = defaultSegmentTolerance
	}
	if c.Reconcile.TrackToleranceSeconds <= 0 {
		c.Reconcile.TrackToleranceSeconds = defaultTrackTolerance
	}
	if c.Reconcile.DefaultImageSeconds <= 0 {
		c.Reconcile.DefaultImageSeconds = defaultImageSeconds
	}
}

func (c *Config) normalizeOutput() {
	if c.Output.Width <= 0 {
		c.Output.Width = defaultOutputWidth
	}
	if c.Output.Height <= 0 {
		c.Output.Height = defaultOutputHeight
	}
	if c.Output.FPS <= 0 {
		c.Output.FPS = defaultOutputFPS
	}
	if strings.TrimSpace(c.Output.VideoCodec) == "" {
		c.Output.VideoCodec = defaultVideoCodec
	}
	if strings.TrimSpace(c.Output.Preset) == "" {
		c.Output.Preset = defaultPreset
	}
	if c.Output.CRF <= 0 {
		c.Output.CRF = defaultCRF
	}
	if strings.TrimSpace(c.Output.AudioCodec) == "" {
		c.Output.AudioCodec = defaultAudioCodec
	}
	if strings.TrimSpace(c.Output.AudioBitrate) == "" {
		c.Output.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeFFmpeg() {
	if strings.TrimSpace(c.FFmpeg.FFmpegBinary) == "" {
		c.FFmpeg.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.FFmpeg.FFprobeBinary) == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
