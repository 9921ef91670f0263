// Package timeline holds the per-scene records the pipeline stages hand to
// each other through the queue: synthesized narration, reconciled segment
// durations, and the absolute offsets that place each scene on the final
// output timeline.
package timeline

import (
	"fmt"

	"storyreel/internal/media"
)

// Action names the padding instruction for one segment.
type Action string

const (
	// ActionNone leaves the segment untouched; the difference is within tolerance.
	ActionNone Action = "none"
	// ActionFreezeVideo holds the video's final frame for Seconds.
	ActionFreezeVideo Action = "freeze_video"
	// ActionPadAudio appends Seconds of silence to the audio.
	ActionPadAudio Action = "pad_audio"
)

// Narration records one scene's synthesized audio.
type Narration struct {
	SceneOrdinal int     `json:"scene_ordinal"`
	AudioPath    string  `json:"audio_path"`
	Seconds      float64 `json:"seconds"`
}

// Segment is one scene's fully reconciled slot on the output timeline. The
// visual and narration inside a segment have identical duration after the
// recorded correction is applied.
type Segment struct {
	SceneOrdinal int        `json:"scene_ordinal"`
	AssetPath    string     `json:"asset_path"`
	AssetKind    media.Kind `json:"asset_kind"`
	AudioPath    string     `json:"audio_path"`

	// AudioSeconds fixes the segment length: the narration duration, or the
	// configured still duration for an image scene with no narration.
	AudioSeconds float64 `json:"audio_seconds"`
	// TrimSeconds is how much source footage the clip uses, from the start
	// of the file. Zero for images.
	TrimSeconds float64 `json:"trim_seconds,omitempty"`

	Action            Action  `json:"action"`
	CorrectionSeconds float64 `json:"correction_seconds,omitempty"`

	// StartOffset is the segment's absolute position on the output timeline.
	StartOffset float64 `json:"start_offset"`
}

// Seconds returns the segment's duration on the output timeline. Padded
// audio stretches the segment to the footage length; frozen video only
// catches the visual up to the narration, so the narration length stands.
func (s Segment) Seconds() float64 {
	if s.Action == ActionPadAudio {
		return s.AudioSeconds + s.CorrectionSeconds
	}
	return s.AudioSeconds
}

// AssignOffsets walks segments in order, stamping each with its absolute
// start offset, and returns the total timeline duration. Caption cues for a
// scene are shifted by that scene's offset so they land on the final
// concatenated stream.
func AssignOffsets(segments []Segment) float64 {
	offset := 0.0
	for i := range segments {
		segments[i].StartOffset = offset
		offset += segments[i].Seconds()
	}
	return offset
}

// Validate rejects timelines a later stage could not assemble.
func Validate(segments []Segment) error {
	if len(segments) == 0 {
		return fmt.Errorf("timeline has no segments")
	}
	for i, seg := range segments {
		if seg.AudioSeconds <= 0 {
			return fmt.Errorf("segment %d (scene %d): non-positive duration %v", i, seg.SceneOrdinal, seg.AudioSeconds)
		}
		if seg.AssetPath == "" {
			return fmt.Errorf("segment %d (scene %d): missing asset", i, seg.SceneOrdinal)
		}
		// Image scenes may run silent; video footage always pairs with
		// narration.
		if seg.AudioPath == "" && seg.AssetKind != media.KindImage {
			return fmt.Errorf("segment %d (scene %d): missing narration", i, seg.SceneOrdinal)
		}
		if seg.AssetKind == media.KindVideo && seg.TrimSeconds <= 0 {
			return fmt.Errorf("segment %d (scene %d): video segment without trim duration", i, seg.SceneOrdinal)
		}
		if i > 0 && segments[i].SceneOrdinal <= segments[i-1].SceneOrdinal {
			return fmt.Errorf("segment %d: scene ordinals out of order", i)
		}
	}
	return nil
}
