package subtitles

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEstimateProducesOrderedCues(t *testing.T) {
	text := "The mountain stood silent. Snow covered every ridge. A single crow circled overhead, watching."
	cues, err := Estimate(text, 12.0, 22, 5)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if len(cues) == 0 {
		t.Fatal("expected cues")
	}
	if !almostEqual(cues[0].Start, 0) {
		t.Errorf("first cue starts at %v, want 0", cues[0].Start)
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].Start < cues[i-1].Start {
			t.Errorf("cue %d starts before cue %d", i, i-1)
		}
		if cues[i].Start < cues[i-1].End {
			t.Errorf("cue %d overlaps cue %d", i, i-1)
		}
	}
	last := cues[len(cues)-1]
	if last.End > 12.0+1e-6 {
		t.Errorf("last cue ends at %v, past audio duration", last.End)
	}
}

func TestEstimateRespectsLineWidth(t *testing.T) {
	text := "Every word in this sentence should land on a line that fits comfortably within the configured width."
	cues, err := Estimate(text, 10.0, 22, 5)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	for _, cue := range cues {
		// Folded remainders may push slightly past the limit; anything more
		// than the fold allowance is a wrapping bug.
		if n := utf8.RuneCountInString(cue.Text); n > 22+5 {
			t.Errorf("cue %q is %d runes wide", cue.Text, n)
		}
	}
}

func TestEstimateFoldsTinyRemainder(t *testing.T) {
	// "zz." alone would strand a three-rune orphan, so it folds into the
	// overflowing line instead of getting one of its own.
	cues, err := Estimate("Alpha bravo zz.", 5.0, 10, 5)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected 1 folded cue, got %d: %+v", len(cues), cues)
	}
	if !strings.Contains(cues[0].Text, "zz.") {
		t.Errorf("remainder missing from folded cue %q", cues[0].Text)
	}
}

func TestEstimateHandlesMultibyteText(t *testing.T) {
	cues, err := Estimate("산이 조용히 서 있었다. 눈이 모든 능선을 덮었다.", 6.0, 22, 5)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if len(cues) < 2 {
		t.Fatalf("expected a cue per sentence, got %d", len(cues))
	}
	if cues[len(cues)-1].End > 6.0+1e-6 {
		t.Errorf("last cue extends past audio: %v", cues[len(cues)-1].End)
	}
}

func TestEstimateRejectsBadInputs(t *testing.T) {
	if _, err := Estimate("   ", 5.0, 22, 5); !errors.Is(err, ErrNoCues) {
		t.Errorf("empty text: got %v, want ErrNoCues", err)
	}
	if _, err := Estimate("Hello.", 0, 22, 5); !errors.Is(err, ErrNoCues) {
		t.Errorf("zero duration: got %v, want ErrNoCues", err)
	}
}
