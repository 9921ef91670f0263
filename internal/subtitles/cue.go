// Package subtitles turns aligned narration timing into caption cues and
// renders them as SRT or ASS documents. Cue text always comes from the
// original script; recognizer output is used for timing only.
package subtitles

import (
	"errors"
	"strings"
)

const (
	// cueGapSeconds is the spacing forced between adjacent cues.
	cueGapSeconds = 0.05
	// minDisplaySeconds is the shortest time a cue may stay on screen.
	minDisplaySeconds = 0.3
)

// Cue is one timed caption entry. Start and End are absolute offsets from
// narration start, never scene-relative, so cues from many scenes concatenate
// into a single stream.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Segment is a speech-recognizer phrase timing. The recognized text is kept
// only long enough to pair the segment with a script sentence.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// ErrNoCues indicates caption generation produced nothing usable.
var ErrNoCues = errors.New("no caption cues produced")

// Normalize enforces cue invariants in place: starts and ends are
// monotonically non-decreasing, adjacent cues never overlap, every cue stays
// on screen for a minimum duration, and nothing extends past the audio. Cues
// that begin at or after the audio end are dropped.
func Normalize(cues []Cue, audioDuration float64) []Cue {
	for i := 0; i+1 < len(cues); i++ {
		current := &cues[i]
		next := &cues[i+1]
		if current.End < next.Start {
			continue
		}
		adjusted := next.Start - cueGapSeconds
		if adjusted-current.Start < minDisplaySeconds {
			// Too short after adjustment; push the next cue back instead.
			current.End = current.Start + minDisplaySeconds
			next.Start = current.End + cueGapSeconds
			if next.End < next.Start {
				next.End = next.Start
			}
		} else {
			current.End = adjusted
		}
	}

	if audioDuration > 0 {
		kept := cues[:0]
		for _, cue := range cues {
			if cue.Start >= audioDuration {
				continue
			}
			if cue.End > audioDuration {
				cue.End = audioDuration
			}
			kept = append(kept, cue)
		}
		cues = kept
	}

	return cues
}

// AlignSegments pairs recognizer segments with original script sentences by
// index: segment i supplies the timing, sentence i supplies the display text.
// Leftover sentences are appended to the final cue rather than dropped;
// surplus segments produce no cue.
func AlignSegments(segments []Segment, sentences []string) []Cue {
	count := len(segments)
	if len(sentences) < count {
		count = len(sentences)
	}
	if count == 0 {
		return nil
	}

	cues := make([]Cue, 0, count)
	for i := 0; i < count; i++ {
		cues = append(cues, Cue{
			Start: segments[i].Start,
			End:   segments[i].End,
			Text:  sentences[i],
		})
	}

	if len(sentences) > count {
		leftover := strings.Join(sentences[count:], " ")
		cues[len(cues)-1].Text += " " + leftover
	}

	return cues
}
