package script

import "strings"

// sentence-terminal punctuation, covering both Latin and CJK forms.
var terminalRunes = map[rune]struct{}{
	'.': {},
	'!': {},
	'?': {},
	'。': {},
	'！': {},
	'？': {},
}

// SplitSentences breaks narration text into sentences on terminal
// punctuation, keeping the punctuation attached to the preceding sentence.
// Consecutive terminators ("?!", "...") stay with the same sentence. Text
// with no terminator at all is returned as a single sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	inTerminator := false

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for _, r := range text {
		if _, terminal := terminalRunes[r]; terminal {
			current.WriteRune(r)
			inTerminator = true
			continue
		}
		if inTerminator {
			flush()
			inTerminator = false
		}
		current.WriteRune(r)
	}
	flush()

	return sentences
}
