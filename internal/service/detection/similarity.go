package detection

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader canonicalizes a CSV header for comparison: Unicode NFKC,
// lower case, punctuation and whitespace removed. "Applied Date", "applied_date"
// and "Applied-Date" all normalize to "applieddate".
func NormalizeHeader(header string) string {
	normed := norm.NFKC.String(header)
	normed = strings.ToLower(strings.TrimSpace(normed))

	var b strings.Builder
	b.Grow(len(normed))
	for _, r := range normed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity scores two already-normalized header strings in [0,1].
// Equality scores 1; containment scores by length ratio; anything else falls
// back to normalized Levenshtein similarity.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		shorter, longer := len(a), len(b)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return float64(shorter) / float64(longer)
	}
	return levenshteinSimilarity(a, b)
}

func levenshteinSimilarity(a, b string) float64 {
	dist := levenshteinDistance(a, b)
	denom := len([]rune(a))
	if l := len([]rune(b)); l > denom {
		denom = l
	}
	if denom == 0 {
		return 1
	}
	sim := 1 - float64(dist)/float64(denom)
	if sim < 0 {
		return 0
	}
	return sim
}

func levenshteinDistance(a, b string) int {
	ar := []rune(a)
	br := []rune(b)
	if len(ar) < len(br) {
		ar, br = br, ar
	}
	if len(br) == 0 {
		return len(ar)
	}
	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ar {
		curr[0] = i + 1
		for j, cb := range br {
			ins := curr[j] + 1
			del := prev[j+1] + 1
			sub := prev[j]
			if ca != cb {
				sub++
			}
			curr[j+1] = min3(ins, del, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(prev)-1]
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
