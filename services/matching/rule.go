package matching

import (
	"fundimatch/models"
)

// Rule score weights. Terms whose backing column is absent from the dataset
// schema contribute zero rather than being renormalized.
const (
	ruleSkillWeight     = 0.4
	ruleRatingWeight    = 0.3
	ruleResponseWeight  = 0.2
	ruleProximityWeight = 0.1

	maxRating          = 5
	maxResponseMinutes = 60
)

// RulePolicy is the weighted-rule score:
//
//	0.4*skill + 0.3*(rating/5) + 0.2*(1 - responseTime/60) + 0.1*(1 - distance/radius)
//
// Candidates beyond the admission radius are excluded by the ranker before
// this policy runs, so the proximity term is always in [0,1] here.
type RulePolicy struct {
	Schema   models.Schema
	RadiusKm float64
}

func (p *RulePolicy) Name() string { return StrategyRule }

func (p *RulePolicy) NeedsVectors() bool { return false }

func (p *RulePolicy) Score(req models.MatchRequest, cand models.Provider, sig Signals) (float64, error) {
	var score float64

	if cand.HasSkill(req.JobType) {
		score += ruleSkillWeight
	}
	if p.Schema.HasRating {
		score += ruleRatingWeight * (cand.Rating / maxRating)
	}
	if p.Schema.HasResponseTime {
		minutes := float64(cand.ResponseTime)
		if minutes > maxResponseMinutes {
			minutes = maxResponseMinutes
		}
		score += ruleResponseWeight * (1 - minutes/maxResponseMinutes)
	}
	if sig.HasDistance && p.RadiusKm > 0 {
		score += ruleProximityWeight * (1 - sig.DistanceKm/p.RadiusKm)
	}

	return clamp01(score), nil
}
