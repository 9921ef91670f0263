// Package reconcile decides how to resolve duration mismatches between a
// visual segment and its paired narration audio. Video is freeze-extended and
// audio is silence-padded; nothing is ever trimmed or speed-changed, which
// keeps narration intelligible and visual content intact.
package reconcile

import (
	"math"

	"storyreel/internal/timeline"
)

// Action names the padding instruction for one segment. The type lives in
// the timeline package so Segment can carry it without importing reconcile.
type Action = timeline.Action

const (
	// ActionNone leaves the segment untouched; the difference is within tolerance.
	ActionNone = timeline.ActionNone
	// ActionFreezeVideo holds the video's final frame for Seconds.
	ActionFreezeVideo = timeline.ActionFreezeVideo
	// ActionPadAudio appends Seconds of silence to the audio.
	ActionPadAudio = timeline.ActionPadAudio
)

// Decision is the padding instruction for one timeline segment.
type Decision struct {
	Action  Action  `json:"action"`
	Seconds float64 `json:"seconds,omitempty"`
}

// Decide compares a visual segment's native duration against the paired
// narration duration. The video is extended when it runs short and the audio
// padded when it runs short; differences within tolerance are ignored.
func Decide(videoSeconds, audioSeconds, tolerance float64) Decision {
	diff := audioSeconds - videoSeconds
	if math.Abs(diff) <= tolerance {
		return Decision{Action: ActionNone}
	}
	if diff > 0 {
		return Decision{Action: ActionFreezeVideo, Seconds: diff}
	}
	return Decision{Action: ActionPadAudio, Seconds: -diff}
}
