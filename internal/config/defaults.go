package config

const (
	defaultStagingDir          = "~/.local/share/storyreel/staging"
	defaultLogDir              = "~/.local/share/storyreel/logs"
	defaultTTSBinary           = "edge-tts"
	defaultTTSVoice            = "en-US-AriaNeural"
	defaultTTSConcurrency      = 4
	defaultTTSTimeoutSeconds   = 120
	defaultWhisperBinary       = "whisper"
	defaultWhisperModel        = "base"
	defaultWhisperTimeout      = 600
	defaultCaptionFormat       = "ass"
	defaultMaxLineChars        = 22
	defaultMinRemainderChars   = 5
	defaultSegmentTolerance    = 0.1
	defaultTrackTolerance      = 0.5
	defaultImageSeconds        = 3.0
	defaultOutputWidth         = 1920
	defaultOutputHeight        = 1080
	defaultOutputFPS           = 30
	defaultVideoCodec          = "libx264"
	defaultPreset              = "medium"
	defaultCRF                 = 23
	defaultAudioCodec          = "aac"
	defaultAudioBitrate        = "192k"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultQueuePollInterval   = 5
	defaultErrorRetryInterval  = 10
	defaultHeartbeatInterval   = 15
	defaultHeartbeatTimeout    = 120
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		TTS: TTS{
			Binary:         defaultTTSBinary,
			Voice:          defaultTTSVoice,
			Concurrency:    defaultTTSConcurrency,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		Whisper: Whisper{
			Enabled:        true,
			Binary:         defaultWhisperBinary,
			Model:          defaultWhisperModel,
			TimeoutSeconds: defaultWhisperTimeout,
		},
		Captions: Captions{
			Format:            defaultCaptionFormat,
			MaxLineChars:      defaultMaxLineChars,
			MinRemainderChars: defaultMinRemainderChars,
			BurnIn:            true,
		},
		Reconcile: Reconcile{
			SegmentToleranceSeconds: defaultSegmentTolerance,
			TrackToleranceSeconds:   defaultTrackTolerance,
			DefaultImageSeconds:     defaultImageSeconds,
		},
		Output: Output{
			Width:        defaultOutputWidth,
			Height:       defaultOutputHeight,
			FPS:          defaultOutputFPS,
			VideoCodec:   defaultVideoCodec,
			Preset:       defaultPreset,
			CRF:          defaultCRF,
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
