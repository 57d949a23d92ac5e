// Package matching implements the matchmaking engine: it filters the
// candidate pool for a request, pulls live signals from the external gateway,
// scores survivors under the configured policy and returns a ranked
// short-list.
package matching

import (
	"context"
	"fmt"
	"time"

	"fundimatch/database/pool"
	"fundimatch/database/signal"
	"fundimatch/models"

	"go.uber.org/zap"
)

// Options are the matching policy knobs, resolved from configuration at
// engine build time.
type Options struct {
	Strategy       string
	TopK           int
	RadiusKm       float64
	PadResults     bool
	TieBreak       []string
	GatewayTimeout time.Duration
}

// Engine is the fully built matching context: immutable pool, fitted encoder,
// trained affinity model and the active scoring policy. Engines are never
// mutated after NewEngine returns; a rebuild produces a fresh Engine that is
// swapped in atomically, so in-flight requests keep their snapshot.
type Engine struct {
	opts    Options
	pool    *pool.CandidatePool
	encoder *Encoder
	model   *AffinityModel
	policy  ScoringPolicy
	gateway signal.Gateway
	logger  *zap.Logger
}

// NewEngine builds an engine from a loaded pool and request history.
func NewEngine(opts Options, cp *pool.CandidatePool, history []pool.HistoryRecord, gw signal.Gateway, logger *zap.Logger) (*Engine, error) {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if len(opts.TieBreak) == 0 {
		opts.TieBreak = []string{KeyScore}
	}
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 2 * time.Second
	}

	schema := cp.Schema()
	model := TrainAffinity(history, logger)
	policy, err := newPolicy(opts.Strategy, schema, opts.RadiusKm, model)
	if err != nil {
		return nil, err
	}

	return &Engine{
		opts:    opts,
		pool:    cp,
		encoder: FitEncoder(cp.Providers(), history, schema),
		model:   model,
		policy:  policy,
		gateway: gw,
		logger:  logger.Named("matching"),
	}, nil
}

// Strategy returns the active scoring strategy name.
func (e *Engine) Strategy() string {
	return e.policy.Name()
}

// KnownLocales returns the sorted set of counties for UI population.
func (e *Engine) KnownLocales() []string {
	return e.pool.Counties()
}

// KnownProfessions returns the sorted skill vocabulary.
func (e *Engine) KnownProfessions() []string {
	return e.pool.Professions()
}

// Match runs the full pipeline for one request. An empty result is not an
// error; gateway failures are recovered with documented defaults and never
// surfaced to the caller.
func (e *Engine) Match(ctx context.Context, req models.MatchRequest) ([]models.MatchResult, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}

	candidates := e.filterBySkill(req.JobType)
	if len(candidates) == 0 {
		return e.finish(nil), nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}

	locations, geoOK := e.resolveLocations(ctx, req, ids)
	availability := e.resolveAvailability(ctx, ids)

	var reqVec []float64
	if e.policy.NeedsVectors() {
		reqVec = e.encoder.EncodeRequest(req.JobType, req.County)
	}

	results := make([]models.MatchResult, 0, len(candidates))
	for _, cand := range candidates {
		if !availability[cand.ID] {
			continue
		}

		sig := e.signalsFor(req, cand, locations, reqVec)

		// Hard admission radius applies only to the rule strategy and only
		// when the request and provider both have usable coordinates. A
		// failed location lookup skips geo filtering entirely.
		if e.policy.Name() == StrategyRule && req.HasCoords && geoOK {
			if !sig.HasDistance || sig.DistanceKm > e.opts.RadiusKm {
				continue
			}
		}

		result, err := e.scoreCandidate(req, cand, sig)
		if err != nil {
			e.logger.Warn("Skipping candidate after scoring failure",
				zap.String("id", cand.ID), zap.Error(err))
			continue
		}
		results = append(results, result)
	}

	ranker := Ranker{TopK: e.opts.TopK, Pad: e.opts.PadResults, Keys: e.opts.TieBreak}
	return e.finish(ranker.Rank(results)), nil
}

func (e *Engine) validate(req models.MatchRequest) error {
	if req.JobType == "" {
		return NewInvalidInput("job type is required")
	}
	if e.policy.Name() == StrategyRule && !e.encoder.KnowsProfession(req.JobType) {
		return NewInvalidInput("unknown job type %q", req.JobType)
	}
	if req.HasCoords {
		if req.Lat < -90 || req.Lat > 90 {
			return NewInvalidInput("latitude %v out of range [-90,90]", req.Lat)
		}
		if req.Long < -180 || req.Long > 180 {
			return NewInvalidInput("longitude %v out of range [-180,180]", req.Long)
		}
	} else if req.County == "" {
		return NewInvalidInput("either coordinates or a county is required")
	}
	return nil
}

func (e *Engine) filterBySkill(jobType string) []models.Provider {
	var out []models.Provider
	for _, p := range e.pool.Providers() {
		if p.HasSkill(jobType) {
			out = append(out, p)
		}
	}
	return out
}

// resolveLocations looks up gateway locations for a coordinate request.
// geoOK is false when the lookup failed, which disables hard geo filtering
// for this request per the failure policy.
func (e *Engine) resolveLocations(ctx context.Context, req models.MatchRequest, ids []string) (map[string]models.GeoPoint, bool) {
	if !req.HasCoords {
		return nil, false
	}
	gctx, cancel := context.WithTimeout(ctx, e.opts.GatewayTimeout)
	defer cancel()
	locations, err := e.gateway.Locations(gctx, ids)
	if err != nil {
		e.logger.Warn("Location lookup failed, skipping geo filtering", zap.Error(err))
		return nil, false
	}
	return locations, true
}

// resolveAvailability looks up gateway availability. On lookup failure every
// candidate is assumed available rather than propagating the error.
func (e *Engine) resolveAvailability(ctx context.Context, ids []string) map[string]bool {
	gctx, cancel := context.WithTimeout(ctx, e.opts.GatewayTimeout)
	defer cancel()
	availability, err := e.gateway.Availability(gctx, ids)
	if err != nil {
		e.logger.Warn("Availability lookup failed, assuming available", zap.Error(err))
		availability = make(map[string]bool, len(ids))
		for _, id := range ids {
			availability[id] = true
		}
	}
	return availability
}

func (e *Engine) signalsFor(req models.MatchRequest, cand models.Provider, locations map[string]models.GeoPoint, reqVec []float64) Signals {
	sig := Signals{RequestVec: reqVec}

	if req.County != "" {
		sig.LocaleFuzzy = FuzzyLocaleScore(cand.County, req.County)
		if cand.County == req.County {
			sig.LocaleExact = 1
		}
	}

	if req.HasCoords {
		// The gateway location wins; its (0,0) sentinel means unknown, in
		// which case the dataset coordinates back it up.
		loc := locations[cand.ID]
		if loc.IsZero() && cand.HasLocation {
			loc = cand.Location
		}
		if !loc.IsZero() {
			sig.DistanceKm = DistanceKm(req.Lat, req.Long, loc.Lat, loc.Long)
			sig.HasDistance = true
		}
	}

	if e.policy.NeedsVectors() {
		sig.CandidateVec = e.encoder.EncodeProvider(cand)
	}
	return sig
}

// scoreCandidate runs the policy for one candidate, converting panics from
// malformed candidate data into a skip instead of aborting the whole match.
func (e *Engine) scoreCandidate(req models.MatchRequest, cand models.Provider, sig Signals) (result models.MatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panic: %v", r)
		}
	}()

	score, err := e.policy.Score(req, cand, sig)
	if err != nil {
		return models.MatchResult{}, err
	}

	result = models.MatchResult{
		ID:          cand.ID,
		Name:        cand.Name,
		Profession:  cand.Profession,
		County:      cand.County,
		Available:   true,
		Score:       score,
		LocaleMatch: sig.LocaleFuzzy,
		DistanceKm:  sig.DistanceKm,
		HasDistance: sig.HasDistance,
	}
	if e.pool.Schema().HasRating {
		result.Rating = cand.Rating
	}
	switch e.policy.Name() {
	case StrategySimilarity:
		result.Similarity = Cosine(sig.RequestVec, sig.CandidateVec)
	case StrategyAffinity:
		result.Affinity = e.model.Predict(req.JobType, cand.Profession)
	}
	return result, nil
}

// finish normalizes the outgoing slice: never nil, so an empty match encodes
// as [] rather than null.
func (e *Engine) finish(results []models.MatchResult) []models.MatchResult {
	if results == nil {
		return []models.MatchResult{}
	}
	return results
}
