package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTTS() error {
	if c.TTS.Voice == "" {
		return errors.New("tts.voice must be set")
	}
	if c.TTS.Concurrency > 16 {
		return fmt.Errorf("tts.concurrency must be at most 16, got %d", c.TTS.Concurrency)
	}
	return nil
}

func (c *Config) validateCaptions() error {
	switch c.Captions.Format {
	case "srt", "ass":
	default:
		return fmt.Errorf("captions.format must be \"srt\" or \"ass\", got %q", c.Captions.Format)
	}
	if c.Captions.MinRemainderChars >= c.Captions.MaxLineChars {
		return fmt.Errorf("captions.min_remainder_chars (%d) must be less than captions.max_line_chars (%d)",
			c.Captions.MinRemainderChars, c.Captions.MaxLineChars)
	}
	return nil
}

func (c *Config) validateOutput() error {
	if c.Output.Width%2 != 0 || c.Output.Height%2 != 0 {
		return fmt.Errorf("output dimensions must be even, got %dx%d", c.Output.Width, c.Output.Height)
	}
	if c.Output.CRF < 0 || c.Output.CRF > 51 {
		return fmt.Errorf("output.crf must be between 0 and 51, got %d", c.Output.CRF)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return errors.New("workflow.error_retry_interval must be positive")
	}
	if c.Workflow.HeartbeatInterval <= 0 || c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow heartbeat interval and timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must exceed workflow.heartbeat_interval")
	}
	return nil
}
