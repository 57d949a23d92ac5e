package matching

import (
	"sort"

	"fundimatch/models"
)

// Tie-break key names accepted in configuration.
const (
	KeyScore    = "score"
	KeyRating   = "rating"
	KeyLocale   = "locale"
	KeyDistance = "distance"
)

// Ranker orders scored results by the configured multi-key tie-break and
// truncates to the top K. The key order is a policy constant supplied by
// configuration, not incidental.
type Ranker struct {
	TopK int
	Pad  bool
	Keys []string
}

// Rank sorts results in place and returns the top-K slice, padded with
// explicit no-match placeholders when padding is enabled.
func (r Ranker) Rank(results []models.MatchResult) []models.MatchResult {
	sort.SliceStable(results, func(i, j int) bool {
		return r.less(results[i], results[j])
	})

	if r.TopK > 0 && len(results) > r.TopK {
		results = results[:r.TopK]
	}
	if r.Pad {
		for len(results) < r.TopK {
			results = append(results, models.PadResult())
		}
	}
	return results
}

// less compares by each configured key in turn: score, rating and locale
// match descending, distance ascending.
func (r Ranker) less(a, b models.MatchResult) bool {
	for _, key := range r.Keys {
		switch key {
		case KeyScore:
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		case KeyRating:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		case KeyLocale:
			if a.LocaleMatch != b.LocaleMatch {
				return a.LocaleMatch > b.LocaleMatch
			}
		case KeyDistance:
			if a.HasDistance != b.HasDistance {
				return a.HasDistance
			}
			if a.DistanceKm != b.DistanceKm {
				return a.DistanceKm < b.DistanceKm
			}
		}
	}
	return false
}
