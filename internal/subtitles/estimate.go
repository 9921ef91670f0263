package subtitles

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"storyreel/internal/script"
)

// Estimate builds cues from script text alone by spreading the narration
// duration across sentences proportionally to character count. Each sentence
// is greedily packed into lines of at most maxLineChars; when closing a line
// would strand fewer than minRemainderChars characters, the remainder is
// folded into the current line instead of producing an orphan cue. This mode
// never fails for non-empty text and positive duration.
func Estimate(text string, audioDuration float64, maxLineChars, minRemainderChars int) ([]Cue, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty script text", ErrNoCues)
	}
	if audioDuration <= 0 {
		return nil, fmt.Errorf("%w: non-positive audio duration", ErrNoCues)
	}

	sentences := script.SplitSentences(text)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	totalChars := utf8.RuneCountInString(strings.Join(sentences, " "))
	if totalChars == 0 {
		return nil, fmt.Errorf("%w: script has no characters", ErrNoCues)
	}
	timePerChar := audioDuration / float64(totalChars)

	var cues []Cue
	currentTime := 0.0
	emit := func(line string) {
		duration := float64(utf8.RuneCountInString(line)) * timePerChar
		cues = append(cues, Cue{Start: currentTime, End: currentTime + duration, Text: line})
		currentTime += duration
	}

	for _, sentence := range sentences {
		for _, line := range wrapSentence(sentence, maxLineChars, minRemainderChars) {
			emit(line)
		}
	}

	if len(cues) == 0 {
		return nil, ErrNoCues
	}
	return Normalize(cues, audioDuration), nil
}

// wrapSentence greedily packs the sentence's words into display lines.
func wrapSentence(sentence string, maxLineChars, minRemainderChars int) []string {
	words := strings.Fields(sentence)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := ""
	for i, word := range words {
		next := current
		if next != "" {
			next += " "
		}
		next += word

		if utf8.RuneCountInString(next) > maxLineChars && current != "" {
			remaining := strings.Join(words[i+1:], " ")
			if remaining != "" && utf8.RuneCountInString(remaining) < minRemainderChars {
				// Folding a tiny tail into this line beats a trailing orphan.
				lines = append(lines, next+" "+remaining)
				return lines
			}
			lines = append(lines, current)
			current = word
			continue
		}
		current = next
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
