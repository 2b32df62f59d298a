package service

import (
	"unicode/utf8"

	agnivade "github.com/agnivade/levenshtein"
)

// DistanceFunc computes the Levenshtein edit distance between two strings
// treated as sequences of runes.
type DistanceFunc func(a, b string) int

// ResolveDistance picks the distance engine once at startup. "builtin" selects
// the pure single-row implementation; anything else gets the library.
func ResolveDistance(engine string) DistanceFunc {
	if engine == "builtin" {
		return singleRowDistance
	}
	return agnivade.ComputeDistance
}

// singleRowDistance is classic Levenshtein with a single-row DP table sized to
// the shorter string, O(min(len(a),len(b))) memory. The matcher runs it once
// per unmatched record against potentially every mapping row.
func singleRowDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Similarity maps a distance to [0,1]. Two empty strings score 0, not 1: the
// matcher must never resolve an empty code to anything.
func Similarity(dist DistanceFunc, a, b string) float64 {
	m := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > m {
		m = n
	}
	if m == 0 {
		return 0
	}
	return 1 - float64(dist(a, b))/float64(m)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
