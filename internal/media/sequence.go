package media

import (
	"regexp"
	"strconv"
)

// SequenceKey orders an asset within a project. Rank is the number parsed
// from the file name; HasRank is false when no usable number was found.
// Tiebreak is the file's modification time as Unix seconds with fractional
// precision, and breaks ties between equal or absent ranks.
type SequenceKey struct {
	Rank     int     `json:"rank"`
	HasRank  bool    `json:"has_rank"`
	Tiebreak float64 `json:"tiebreak"`
}

var (
	leadingNumberRe  = regexp.MustCompile(`^(\d+)\.`)
	delimitedRankRe  = regexp.MustCompile(`[_-](\d{1,3})\.`)
	parenthesizedRe  = regexp.MustCompile(`\((\d+)\)`)
	generatedSlugRe  = regexp.MustCompile(`[_-][A-Za-z0-9]{8,}`)
)

// ExtractSequenceKey parses an ordering key from a file name (not a path).
// Patterns are tried in order and the first match wins:
//
//  1. leading digits followed by a dot ("01.jpg")
//  2. an underscore or hyphen, 1-3 digits, then a dot ("image_07.png")
//  3. a parenthesized integer ("Photo (47).jpg"), skipped when the name also
//     carries an 8+ character alphanumeric run after an underscore or hyphen,
//     which marks a machine-generated id ("Whisk_2ea51d84758d.png")
//
// Unparseable names are not an error; rank is simply absent and ordering
// falls back to the tiebreak.
func ExtractSequenceKey(name string, tiebreak float64) SequenceKey {
	key := SequenceKey{Tiebreak: tiebreak}

	if m := leadingNumberRe.FindStringSubmatch(name); m != nil {
		if rank, err := strconv.Atoi(m[1]); err == nil {
			key.Rank = rank
			key.HasRank = true
			return key
		}
	}

	if m := delimitedRankRe.FindStringSubmatch(name); m != nil {
		if rank, err := strconv.Atoi(m[1]); err == nil {
			key.Rank = rank
			key.HasRank = true
			return key
		}
	}

	if generatedSlugRe.MatchString(name) {
		return key
	}
	if m := parenthesizedRe.FindStringSubmatch(name); m != nil {
		if rank, err := strconv.Atoi(m[1]); err == nil {
			key.Rank = rank
			key.HasRank = true
		}
	}

	return key
}
