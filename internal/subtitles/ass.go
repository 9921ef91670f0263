package subtitles

import (
	"fmt"
	"io"
	"strings"
)

const assHeader = `[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,NanumGothic,96,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,-1,0,0,0,100,100,0,0,1,3,2,2,10,10,20,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// WriteASS renders cues as an Advanced SubStation Alpha document. The play
// resolution should match the output video so the default style scales
// predictably.
func WriteASS(w io.Writer, cues []Cue, width, height int) error {
	if len(cues) == 0 {
		return ErrNoCues
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid play resolution %dx%d", width, height)
	}
	if _, err := fmt.Fprintf(w, assHeader, width, height); err != nil {
		return fmt.Errorf("write ass header: %w", err)
	}
	for i, cue := range cues {
		text := strings.ReplaceAll(strings.TrimSpace(cue.Text), "\n", `\N`)
		if _, err := fmt.Fprintf(w, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			FormatASSTimestamp(cue.Start),
			FormatASSTimestamp(cue.End),
			text,
		); err != nil {
			return fmt.Errorf("write ass cue %d: %w", i+1, err)
		}
	}
	return nil
}

// FormatASSTimestamp renders seconds as h:mm:ss.cc (centiseconds).
func FormatASSTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalCentis := int64(seconds * 100)
	hours := totalCentis / 360_000
	minutes := (totalCentis % 360_000) / 6000
	secs := (totalCentis % 6000) / 100
	centis := totalCentis % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, centis)
}
