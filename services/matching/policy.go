package matching

import (
	"fmt"

	"fundimatch/models"
)

// Scoring strategy names, selectable by configuration.
const (
	StrategyRule       = "rule"
	StrategySimilarity = "similarity"
	StrategyAffinity   = "affinity"
)

// Signals carries the per-candidate side inputs a policy may consume. The
// engine resolves them once per candidate; each policy reads only the fields
// its formula uses.
type Signals struct {
	DistanceKm  float64
	HasDistance bool
	LocaleFuzzy float64 // floored fuzzy fraction vs the requested county
	LocaleExact float64 // 1 when the counties match exactly

	RequestVec   []float64
	CandidateVec []float64
}

// ScoringPolicy is a pure scoring function: (request, candidate, signals) →
// score in [0,1]. Implementations must be safe for concurrent use.
type ScoringPolicy interface {
	Name() string
	Score(req models.MatchRequest, cand models.Provider, sig Signals) (float64, error)
	// NeedsVectors reports whether the engine must encode feature vectors
	// for this policy.
	NeedsVectors() bool
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// newPolicy wires the configured strategy to its implementation.
func newPolicy(strategy string, schema models.Schema, radiusKm float64, model *AffinityModel) (ScoringPolicy, error) {
	switch strategy {
	case StrategyRule:
		return &RulePolicy{Schema: schema, RadiusKm: radiusKm}, nil
	case StrategySimilarity:
		return &SimilarityPolicy{}, nil
	case StrategyAffinity:
		return &AffinityPolicy{Model: model}, nil
	default:
		return nil, fmt.Errorf("unknown matching strategy %q", strategy)
	}
}
