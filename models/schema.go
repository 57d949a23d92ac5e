package models

// Schema records which optional dataset columns were present at load time.
// The scoring engine consults it to decide which score terms apply instead
// of probing individual providers for zero values.
type Schema struct {
	HasRating       bool `json:"hasRating"`
	HasResponseTime bool `json:"hasResponseTime"`
	HasSatisfaction bool `json:"hasSatisfaction"`
	HasGender       bool `json:"hasGender"`
	HasCoordinates  bool `json:"hasCoordinates"`
}
