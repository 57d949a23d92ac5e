package matching

import (
	"math"
	"strings"
	"unicode"
)

// Locale fuzzy-match scores below this threshold are floored to zero to keep
// near-miss noise out of the proximity component.
const fuzzyFloor = 0.6

const localeNgramSize = 2

// LocaleSimilarity returns the raw string-similarity ratio between two locale
// names in [0,1], computed as cosine similarity over character bigrams.
func LocaleSimilarity(a, b string) float64 {
	na, nb := normalizeLocale(a), normalizeLocale(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return ngramCosine(ngrams(na, localeNgramSize), ngrams(nb, localeNgramSize))
}

// FuzzyLocaleScore is LocaleSimilarity with the noise floor applied: values
// below 0.6 contribute exactly zero.
func FuzzyLocaleScore(a, b string) float64 {
	sim := LocaleSimilarity(a, b)
	if sim < fuzzyFloor {
		return 0
	}
	return sim
}

// normalizeLocale lowercases and strips everything but letters and digits.
func normalizeLocale(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// ngrams slices over runes, not bytes, so multi-byte locale names produce
// whole-character grams.
func ngrams(s string, n int) []string {
	runes := []rune(s)
	if len(runes) < n {
		return []string{s}
	}
	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i <= len(runes)-n; i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

func ngramCosine(a, b []string) float64 {
	freqA := ngramFrequencies(a)
	freqB := ngramFrequencies(b)

	var dot, magA, magB float64
	for gram, countA := range freqA {
		if countB, found := freqB[gram]; found {
			dot += float64(countA * countB)
		}
		magA += float64(countA * countA)
	}
	for _, countB := range freqB {
		magB += float64(countB * countB)
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func ngramFrequencies(grams []string) map[string]int {
	freq := make(map[string]int, len(grams))
	for _, gram := range grams {
		freq[gram]++
	}
	return freq
}
