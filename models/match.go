package models

// MatchRequest is a single matchmaking query: a job type plus a location.
// The location is either coordinates or a free-text county; HasCoords says
// which was supplied.
type MatchRequest struct {
	JobType   string  `json:"jobType"`
	Lat       float64 `json:"lat,omitempty"`
	Long      float64 `json:"long,omitempty"`
	HasCoords bool    `json:"-"`
	County    string  `json:"county,omitempty"`
}

// MatchResult is one ranked entry of the short-list. Constructed fresh per
// request, never persisted.
type MatchResult struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Profession  string  `json:"profession"`
	County      string  `json:"county"`
	Available   bool    `json:"available"`
	Rating      float64 `json:"rating,omitempty"`
	Score       float64 `json:"score"`
	Similarity  float64 `json:"similarity,omitempty"`
	Affinity    float64 `json:"affinity,omitempty"`
	LocaleMatch float64 `json:"localeMatch,omitempty"`
	DistanceKm  float64 `json:"distanceKm,omitempty"`
	HasDistance bool    `json:"-"`
	NoMatch     bool    `json:"noMatch,omitempty"` // explicit padding placeholder
}

// PadResult is the placeholder appended when result padding is enabled and
// fewer than K candidates survive filtering.
func PadResult() MatchResult {
	return MatchResult{NoMatch: true}
}
