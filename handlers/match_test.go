package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fundimatch/database/pool"
	"fundimatch/models"
	"fundimatch/services/matching"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubGateway struct{}

func (stubGateway) Availability(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (stubGateway) Locations(ctx context.Context, ids []string) (map[string]models.GeoPoint, error) {
	return map[string]models.GeoPoint{
		"1": {Lat: -1.2921, Long: 36.8219},
	}, nil
}

func setupTestEngine(t *testing.T) {
	t.Helper()
	cp := pool.New([]models.Provider{
		{ID: "1", Name: "John", Profession: "plumbing", Skills: []string{"plumbing"}, County: "Nairobi", Rating: 4.5, ResponseTime: 10},
	}, models.Schema{HasRating: true, HasResponseTime: true})

	engine, err := matching.NewEngine(matching.Options{
		Strategy:       matching.StrategyRule,
		TopK:           5,
		RadiusKm:       20,
		TieBreak:       []string{matching.KeyScore},
		GatewayTimeout: time.Second,
	}, cp, nil, stubGateway{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	SetEngineProvider(func() *matching.Engine { return engine })
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/match", MatchHandler)
	r.GET("/api/locales", LocalesHandler)
	r.GET("/api/professions", ProfessionsHandler)
	return r
}

func postMatch(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/match", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMatchHandlerSuccess(t *testing.T) {
	setupTestEngine(t)
	r := newTestRouter()

	w := postMatch(t, r, `{"jobType":"plumbing","lat":-1.30,"long":36.82}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var results []models.MatchResult
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("response not a result list: %v", err)
	}
	if len(results) != 1 || results[0].ID != "1" {
		t.Errorf("results = %+v, want provider 1", results)
	}
}

func TestMatchHandlerValidation(t *testing.T) {
	setupTestEngine(t)
	r := newTestRouter()

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `plumbing`},
		{name: "missing job type", body: `{"lat":-1.30,"long":36.82}`},
		{name: "unknown job type", body: `{"jobType":"welding","lat":-1.30,"long":36.82}`},
		{name: "latitude out of range", body: `{"jobType":"plumbing","lat":91,"long":36.82}`},
		{name: "no location", body: `{"jobType":"plumbing"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := postMatch(t, r, tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestMatchHandlerEmptyResultIsOK(t *testing.T) {
	setupTestEngine(t)
	r := newTestRouter()

	// Coordinates in Mombasa put every provider outside the admission
	// radius: an empty match is 200 with [], never an error.
	w := postMatch(t, r, `{"jobType":"plumbing","lat":-4.0435,"long":39.6682}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var results []models.MatchResult
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("response not a list: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want empty", results)
	}
}

func TestLocalesHandler(t *testing.T) {
	setupTestEngine(t)
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/locales", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Locales []string `json:"locales"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Locales) != 1 || resp.Locales[0] != "Nairobi" {
		t.Errorf("locales = %v", resp.Locales)
	}
}

func TestProfessionsHandler(t *testing.T) {
	setupTestEngine(t)
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/professions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Professions []string `json:"professions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Professions) != 1 || resp.Professions[0] != "plumbing" {
		t.Errorf("professions = %v", resp.Professions)
	}
}
