package match

import "strings"

// substringScore is the fixed similarity awarded when one normalized name
// contains the other ("Aragon Ballroom" inside "Byline Bank Aragon
// Ballroom"). Chosen at 0.85, midway in the 0.8-0.9 band that keeps a
// substring hit above any character-overlap score but below an exact match.
const substringScore = 0.85

// BaseName strips qualifier suffixes from a display name: everything from
// the first '(' or '[' onward is dropped, so "Jamie xx (18+ Event)"
// compares as "Jamie xx".
func BaseName(s string) string {
	if i := strings.IndexAny(s, "(["); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// normalizeName lowercases and strips everything that is not a letter or
// digit, so punctuation and spacing differences between marketplaces never
// affect comparison.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity scores two free-text names in [0,1]. Exact normalized match
// is 1.0, a substring relationship scores substringScore, and anything else
// falls back to unique-character overlap — a coarse, order-insensitive
// tie-breaking signal, not the primary discriminator. Symmetric in its
// arguments.
func Similarity(a, b string) float64 {
	na, nb := normalizeName(a), normalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1.0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return substringScore
	}

	setA := charSet(na)
	setB := charSet(nb)
	common := 0
	for r := range setA {
		if setB[r] {
			common++
		}
	}
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	return float64(common) / float64(larger)
}

func charSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		set[r] = true
	}
	return set
}
