package matching

import (
	"fmt"

	"fundimatch/models"
)

// Similarity combination weights: the encoded-vector cosine dominates, the
// fuzzy locale fraction softens geography into the score instead of a hard
// filter.
const (
	simVectorWeight = 0.7
	simLocaleWeight = 0.3
)

// SimilarityPolicy scores by cosine similarity between the encoded request
// vector and the candidate's encoded feature vector, combined with the fuzzy
// locale-match fraction.
type SimilarityPolicy struct{}

func (p *SimilarityPolicy) Name() string { return StrategySimilarity }

func (p *SimilarityPolicy) NeedsVectors() bool { return true }

func (p *SimilarityPolicy) Score(req models.MatchRequest, cand models.Provider, sig Signals) (float64, error) {
	if len(sig.RequestVec) == 0 || len(sig.RequestVec) != len(sig.CandidateVec) {
		return 0, fmt.Errorf("similarity scoring for %s: missing or mismatched feature vectors", cand.ID)
	}
	score := simVectorWeight*Cosine(sig.RequestVec, sig.CandidateVec) + simLocaleWeight*sig.LocaleFuzzy
	return clamp01(score), nil
}
