package nlp

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// typeShortcuts are substring shortcuts for the request-type enumeration.
var typeShortcuts = []struct {
	substr string
	option string
}{
	{"feature", "Feature"},
	{"bug", "Bug"},
	{"issue", "Bug"},
	{"improve", "Improvement"},
	{"enhance", "Improvement"},
}

// MatchOption picks the closest member of a closed option set for noisy
// input. Exact (case-insensitive) matches win, then substring shortcuts,
// then edit distance over the whole string and over individual words. The
// accepted distance is 2 for short options (<=6 chars) and 3 otherwise.
func MatchOption(input string, options []string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}

	for _, opt := range options {
		if strings.EqualFold(in, opt) {
			return opt, true
		}
	}

	optionSet := make(map[string]bool, len(options))
	for _, opt := range options {
		optionSet[opt] = true
	}
	for _, sc := range typeShortcuts {
		if optionSet[sc.option] && strings.Contains(in, sc.substr) {
			return sc.option, true
		}
	}

	best := ""
	bestDist := -1
	for _, opt := range options {
		d := optionDistance(in, opt)
		if bestDist == -1 || d < bestDist {
			best, bestDist = opt, d
		}
	}
	if best == "" {
		return "", false
	}
	limit := 3
	if len(best) <= 6 {
		limit = 2
	}
	if bestDist <= limit {
		return best, true
	}
	return "", false
}

// optionDistance is the minimum edit distance between the input and the
// option, considered whole and word by word on both sides.
func optionDistance(in, option string) int {
	opt := strings.ToLower(option)
	d := levenshtein.ComputeDistance(in, opt)
	for _, w := range strings.Fields(opt) {
		if dw := levenshtein.ComputeDistance(in, w); dw < d {
			d = dw
		}
	}
	for _, w := range strings.Fields(in) {
		if dw := levenshtein.ComputeDistance(w, opt); dw < d {
			d = dw
		}
	}
	return d
}
