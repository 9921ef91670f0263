package subtitles

import (
	"fmt"
	"io"
	"strings"
)

// WriteSRT renders cues as a SubRip document with millisecond timestamps.
func WriteSRT(w io.Writer, cues []Cue) error {
	if len(cues) == 0 {
		return ErrNoCues
	}
	for i, cue := range cues {
		if _, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1,
			FormatSRTTimestamp(cue.Start),
			FormatSRTTimestamp(cue.End),
			strings.TrimSpace(cue.Text),
		); err != nil {
			return fmt.Errorf("write srt cue %d: %w", i+1, err)
		}
	}
	return nil
}

// FormatSRTTimestamp renders seconds as HH:MM:SS,mmm.
func FormatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds * 1000)
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
