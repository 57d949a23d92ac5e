package matching

import (
	"fmt"
	"math"

	"fundimatch/database/pool"
	"fundimatch/models"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// Affinity training hyperparameters. The model is tiny (one weight per
// job-type and profession bucket), so plain batch gradient descent converges
// quickly.
const (
	affinityEpochs       = 300
	affinityLearningRate = 0.1
	neutralAffinity      = 0.5
)

// AffinityModel is a binary logistic classifier over (job type, provider
// profession) co-occurrence, trained once at startup from request history.
// It predicts the probability that a provider of a given profession suits a
// given job type.
type AffinityModel struct {
	jobs        map[string]int
	professions map[string]int
	weights     []float64
	bias        float64
	neutral     bool
}

// TrainAffinity fits the model from history. A history with fewer than two
// outcome classes cannot back a classifier; the model then degrades to the
// neutral constant score instead of failing.
func TrainAffinity(history []pool.HistoryRecord, logger *zap.Logger) *AffinityModel {
	m := &AffinityModel{
		jobs:        make(map[string]int),
		professions: make(map[string]int),
	}

	positives, negatives := 0, 0
	for _, h := range history {
		if _, ok := m.jobs[h.JobType]; !ok {
			m.jobs[h.JobType] = len(m.jobs)
		}
		if _, ok := m.professions[h.ProviderProfession]; !ok {
			m.professions[h.ProviderProfession] = len(m.professions)
		}
		if h.Hired {
			positives++
		} else {
			negatives++
		}
	}

	if positives == 0 || negatives == 0 {
		m.neutral = true
		logger.Info("Affinity history has a single outcome class, using neutral score",
			zap.Int("positives", positives), zap.Int("negatives", negatives))
		return m
	}

	dim := len(m.jobs) + len(m.professions)
	m.weights = make([]float64, dim)

	features := make([][]float64, len(history))
	labels := make([]float64, len(history))
	for i, h := range history {
		features[i] = m.featurize(h.JobType, h.ProviderProfession)
		if h.Hired {
			labels[i] = 1
		}
	}

	n := float64(len(history))
	grad := make([]float64, dim)
	for epoch := 0; epoch < affinityEpochs; epoch++ {
		for i := range grad {
			grad[i] = 0
		}
		biasGrad := 0.0
		for i, x := range features {
			err := sigmoid(floats.Dot(m.weights, x)+m.bias) - labels[i]
			floats.AddScaled(grad, err, x)
			biasGrad += err
		}
		floats.AddScaled(m.weights, -affinityLearningRate/n, grad)
		m.bias -= affinityLearningRate * biasGrad / n
	}

	logger.Info("Affinity model trained",
		zap.Int("samples", len(history)),
		zap.Int("jobTypes", len(m.jobs)),
		zap.Int("professions", len(m.professions)))
	return m
}

func (m *AffinityModel) featurize(jobType, profession string) []float64 {
	x := make([]float64, len(m.jobs)+len(m.professions))
	if idx, ok := m.jobs[jobType]; ok {
		x[idx] = 1
	}
	if idx, ok := m.professions[profession]; ok {
		x[len(m.jobs)+idx] = 1
	}
	return x
}

// Predict returns the suitability probability in [0,1]. Unseen job types or
// professions simply contribute nothing to the logit.
func (m *AffinityModel) Predict(jobType, profession string) float64 {
	if m.neutral {
		return neutralAffinity
	}
	x := m.featurize(jobType, profession)
	return sigmoid(floats.Dot(m.weights, x) + m.bias)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Affinity combination weights: 0.6*affinity + 0.4*localeExact.
const (
	affinityWeight       = 0.6
	affinityLocaleWeight = 0.4
)

// AffinityPolicy scores by the learned suitability probability combined with
// exact locale match.
type AffinityPolicy struct {
	Model *AffinityModel
}

func (p *AffinityPolicy) Name() string { return StrategyAffinity }

func (p *AffinityPolicy) NeedsVectors() bool { return false }

func (p *AffinityPolicy) Score(req models.MatchRequest, cand models.Provider, sig Signals) (float64, error) {
	if p.Model == nil {
		return 0, fmt.Errorf("affinity scoring for %s: no model", cand.ID)
	}
	score := affinityWeight*p.Model.Predict(req.JobType, cand.Profession) + affinityLocaleWeight*sig.LocaleExact
	return clamp01(score), nil
}
