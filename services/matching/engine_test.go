package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"fundimatch/database/pool"
	"fundimatch/models"

	"go.uber.org/zap"
)

// fakeGateway implements signal.Gateway in memory.
type fakeGateway struct {
	availability map[string]bool
	locations    map[string]models.GeoPoint
	defaultAvail bool
	failAvail    bool
	failLoc      bool
}

func (f *fakeGateway) Availability(ctx context.Context, ids []string) (map[string]bool, error) {
	if f.failAvail {
		return nil, errors.New("signal store down")
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if v, ok := f.availability[id]; ok {
			out[id] = v
		} else {
			out[id] = f.defaultAvail
		}
	}
	return out, nil
}

func (f *fakeGateway) Locations(ctx context.Context, ids []string) (map[string]models.GeoPoint, error) {
	if f.failLoc {
		return nil, errors.New("signal store down")
	}
	out := make(map[string]models.GeoPoint, len(ids))
	for _, id := range ids {
		out[id] = f.locations[id]
	}
	return out, nil
}

func nairobiPool() *pool.CandidatePool {
	providers := []models.Provider{
		{ID: "1", Name: "John", Profession: "plumbing", Skills: []string{"plumbing", "electrical"}, County: "Nairobi", Rating: 4.5, ResponseTime: 10, Satisfaction: "good"},
		{ID: "2", Name: "Grace", Profession: "electrical", Skills: []string{"electrical"}, County: "Nairobi", Rating: 4.8, ResponseTime: 15, Satisfaction: "excellent"},
		{ID: "3", Name: "Peter", Profession: "plumbing", Skills: []string{"plumbing"}, County: "Mombasa", Rating: 4.1, ResponseTime: 25, Satisfaction: "good"},
		{ID: "4", Name: "Amina", Profession: "plumbing", Skills: []string{"plumbing"}, County: "Nairobi", Rating: 3.9, ResponseTime: 40, Satisfaction: "fair"},
	}
	return pool.New(providers, models.Schema{
		HasRating:       true,
		HasResponseTime: true,
		HasSatisfaction: true,
	})
}

func newTestEngine(t *testing.T, strategy string, cp *pool.CandidatePool, history []pool.HistoryRecord, gw *fakeGateway) *Engine {
	t.Helper()
	engine, err := NewEngine(Options{
		Strategy:       strategy,
		TopK:           5,
		RadiusKm:       20,
		TieBreak:       []string{KeyScore},
		GatewayTimeout: time.Second,
	}, cp, history, gw, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return engine
}

func allAvailableGateway() *fakeGateway {
	return &fakeGateway{
		availability: map[string]bool{"1": true, "2": true, "3": true, "4": true},
		locations: map[string]models.GeoPoint{
			"1": {Lat: -1.2921, Long: 36.8219},
			"2": {Lat: -1.3032, Long: 36.8012},
			"3": {Lat: -4.0435, Long: 39.6682},
			"4": {Lat: -1.2950, Long: 36.8150},
		},
	}
}

func TestMatchRuleStrategyExample(t *testing.T) {
	engine := newTestEngine(t, StrategyRule, nairobiPool(), nil, allAvailableGateway())

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", Lat: -1.30, Long: 36.82, HasCoords: true,
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	var got *models.MatchResult
	for i := range results {
		if results[i].ID == "1" {
			got = &results[i]
		}
	}
	if got == nil {
		t.Fatalf("expected provider 1 in results, got %+v", results)
	}
	if got.DistanceKm < 0.5 || got.DistanceKm > 1.5 {
		t.Errorf("provider 1 distance = %v, want ≈ 1 km", got.DistanceKm)
	}
	want := 0.4 + 0.3*(4.5/5) + 0.2*(1-10.0/60) + 0.1*(1-got.DistanceKm/20)
	if diff := got.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("provider 1 score = %v, want %v", got.Score, want)
	}

	// Provider 3 (Mombasa, ~440 km away) must be excluded outright.
	for _, r := range results {
		if r.ID == "3" {
			t.Errorf("provider beyond admission radius appeared in results")
		}
	}
}

func TestMatchResultsSortedAndBounded(t *testing.T) {
	engine := newTestEngine(t, StrategyRule, nairobiPool(), nil, allAvailableGateway())

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", Lat: -1.29, Long: 36.82, HasCoords: true,
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) > 5 {
		t.Errorf("len = %d, want ≤ K", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted non-increasing at %d: %v > %v", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestMatchExcludesUnavailable(t *testing.T) {
	gw := allAvailableGateway()
	gw.availability["1"] = false
	engine := newTestEngine(t, StrategyRule, nairobiPool(), nil, gw)

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", Lat: -1.29, Long: 36.82, HasCoords: true,
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for _, r := range results {
		if r.ID == "1" {
			t.Errorf("unavailable provider appeared in results")
		}
	}
}

func TestMatchDefaultUnavailable(t *testing.T) {
	// Provider 4 has no availability entry; with default-unavailable it must
	// never be shown.
	gw := allAvailableGateway()
	delete(gw.availability, "4")
	engine := newTestEngine(t, StrategyRule, nairobiPool(), nil, gw)

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", Lat: -1.29, Long: 36.82, HasCoords: true,
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for _, r := range results {
		if r.ID == "4" {
			t.Errorf("provider with no availability entry appeared in results")
		}
	}
}

func TestMatchAvailabilityLookupFailureAssumesAvailable(t *testing.T) {
	gw := allAvailableGateway()
	gw.failAvail = true
	engine := newTestEngine(t, StrategyRule, nairobiPool(), nil, gw)

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", Lat: -1.29, Long: 36.82, HasCoords: true,
	})
	if err != nil {
		t.Fatalf("gateway failure must not surface to the caller, got %v", err)
	}
	if len(results) == 0 {
		t.Errorf("expected candidates under assume-available fallback")
	}
}

func TestMatchLocationLookupFailureSkipsGeoFilter(t *testing.T) {
	gw := allAvailableGateway()
	gw.failLoc = true
	engine := newTestEngine(t, StrategyRule, nairobiPool(), nil, gw)

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", Lat: -1.29, Long: 36.82, HasCoords: true,
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	// With geo filtering skipped, even the Mombasa provider survives.
	found := false
	for _, r := range results {
		if r.ID == "3" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected geo filter to be skipped after location lookup failure")
	}
}

func TestMatchSentinelLocationExcluded(t *testing.T) {
	// Provider 1's gateway location is the (0,0) sentinel and the pool has
	// no coordinate columns, so no spurious distance from the origin may be
	// computed and the provider is excluded from the radius admission.
	gw := allAvailableGateway()
	gw.locations["1"] = models.GeoPoint{}
	engine := newTestEngine(t, StrategyRule, nairobiPool(), nil, gw)

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", Lat: -1.29, Long: 36.82, HasCoords: true,
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	for _, r := range results {
		if r.ID == "1" {
			t.Errorf("provider with unknown location admitted to radius-filtered results")
		}
	}
}

func TestMatchDatasetCoordinatesBackUpSentinel(t *testing.T) {
	providers := []models.Provider{
		{
			ID: "1", Name: "John", Profession: "plumbing", Skills: []string{"plumbing"},
			County: "Nairobi", Rating: 4.5, ResponseTime: 10,
			Location: models.GeoPoint{Lat: -1.2921, Long: 36.8219}, HasLocation: true,
		},
	}
	cp := pool.New(providers, models.Schema{HasRating: true, HasResponseTime: true, HasCoordinates: true})
	gw := &fakeGateway{availability: map[string]bool{"1": true}}
	engine := newTestEngine(t, StrategyRule, cp, nil, gw)

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", Lat: -1.30, Long: 36.82, HasCoords: true,
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) != 1 || !results[0].HasDistance {
		t.Fatalf("expected dataset coordinates to back up the sentinel, got %+v", results)
	}
}

func TestMatchInvalidInput(t *testing.T) {
	engine := newTestEngine(t, StrategyRule, nairobiPool(), nil, allAvailableGateway())

	tests := []struct {
		name string
		req  models.MatchRequest
	}{
		{name: "empty job type", req: models.MatchRequest{Lat: -1.29, Long: 36.82, HasCoords: true}},
		{name: "unknown job type", req: models.MatchRequest{JobType: "welding", Lat: -1.29, Long: 36.82, HasCoords: true}},
		{name: "latitude out of range", req: models.MatchRequest{JobType: "plumbing", Lat: 91, Long: 36.82, HasCoords: true}},
		{name: "longitude out of range", req: models.MatchRequest{JobType: "plumbing", Lat: -1.29, Long: 181, HasCoords: true}},
		{name: "no location at all", req: models.MatchRequest{JobType: "plumbing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Match(context.Background(), tt.req)
			if !IsInvalidInput(err) {
				t.Errorf("Match(%+v) error = %v, want InvalidInput", tt.req, err)
			}
		})
	}
}

func TestMatchNoCandidatesIsEmptyNotError(t *testing.T) {
	// "welding" enters the vocabulary via history, but no provider offers
	// it: the match must return an empty list, not an error.
	history := []pool.HistoryRecord{
		{JobType: "welding", ProviderProfession: "welding", Hired: true},
		{JobType: "welding", ProviderProfession: "plumbing", Hired: false},
	}
	engine := newTestEngine(t, StrategyRule, nairobiPool(), history, allAvailableGateway())

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "welding", Lat: -1.29, Long: 36.82, HasCoords: true,
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("results = %v, want empty non-nil list", results)
	}
}

func TestMatchSimilarityStrategyCountyOnly(t *testing.T) {
	engine := newTestEngine(t, StrategySimilarity, nairobiPool(), nil, allAvailableGateway())

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", County: "Nairobi",
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results for county-only similarity match")
	}
	// Geography is soft here: the Mombasa plumber stays in, ranked by score.
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("similarity results not sorted at %d", i)
		}
	}
	for _, r := range results {
		if r.Similarity == 0 && r.ID != "3" {
			t.Errorf("expected a non-zero similarity for in-county provider %s", r.ID)
		}
	}
}

func TestMatchAffinityStrategy(t *testing.T) {
	history := []pool.HistoryRecord{
		{JobType: "plumbing", ProviderProfession: "plumbing", Hired: true},
		{JobType: "plumbing", ProviderProfession: "plumbing", Hired: true},
		{JobType: "plumbing", ProviderProfession: "electrical", Hired: false},
		{JobType: "electrical", ProviderProfession: "electrical", Hired: true},
		{JobType: "electrical", ProviderProfession: "plumbing", Hired: false},
	}
	engine := newTestEngine(t, StrategyAffinity, nairobiPool(), history, allAvailableGateway())

	results, err := engine.Match(context.Background(), models.MatchRequest{
		JobType: "plumbing", County: "Nairobi",
	})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected affinity results")
	}
	for _, r := range results {
		if r.Affinity < 0 || r.Affinity > 1 {
			t.Errorf("affinity %v out of [0,1]", r.Affinity)
		}
	}
}

func TestEngineSnapshotSurvivesRebuild(t *testing.T) {
	engine := newTestEngine(t, StrategyRule, nairobiPool(), nil, allAvailableGateway())
	before := engine.KnownLocales()

	// A rebuild produces a new engine; the old snapshot keeps serving its
	// own pool.
	replacement := pool.New([]models.Provider{
		{ID: "9", Name: "New", Profession: "welding", Skills: []string{"welding"}, County: "Eldoret"},
	}, models.Schema{})
	fresh := newTestEngine(t, StrategyRule, replacement, nil, allAvailableGateway())

	after := engine.KnownLocales()
	if len(before) != len(after) {
		t.Errorf("old engine changed after rebuild: %v vs %v", before, after)
	}
	if locales := fresh.KnownLocales(); len(locales) != 1 || locales[0] != "Eldoret" {
		t.Errorf("fresh engine locales = %v", locales)
	}
}
