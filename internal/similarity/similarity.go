package similarity

import (
	"unicode/utf8"

	edlib "github.com/hbollon/go-edlib"
)

// Threshold is the ratio a pair of strings must exceed to be considered the
// same name. It is fixed and not configurable.
const Threshold = 0.8

// Ratio returns a normalized edit-distance score in [0,1] for a and b, where
// 1 means identical. Insertions and deletions cost 1 and a substitution
// costs 2, so the score is 2*LCS(a,b) / (len(a)+len(b)) measured in runes.
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1.0
	}
	return float64(2*edlib.LCS(a, b)) / float64(total)
}

// Matches reports whether Ratio(a, b) exceeds Threshold.
func Matches(a, b string) bool {
	return Ratio(a, b) > Threshold
}
