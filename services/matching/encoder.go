package matching

import (
	"sort"

	"fundimatch/database/pool"
	"fundimatch/models"

	"gonum.org/v1/gonum/floats"
)

// Numeric defaults for the synthetic request vector, so that the request
// shares the provider vectors' dimensionality when no live requester profile
// exists: rating 0, response code 5 ("slow"), satisfaction code 1 ("fair").
const (
	requestDefaultRating       = 0
	requestDefaultResponseCode = models.ResponseCodeSlowest
	requestDefaultSatisfaction = models.SatisfactionFair
)

// Encoder maps categorical attributes into a fixed-length numeric vector:
// one-hot blocks for profession, county and (when the dataset carries it)
// gender, followed by the numeric side-channel features. The vocabulary is
// frozen after FitEncoder; unseen categories encode as an all-zero block,
// never an error.
type Encoder struct {
	professions map[string]int
	counties    map[string]int
	genders     map[string]int
	hasGender   bool
	dim         int
}

// FitEncoder builds the encoder vocabulary from the union of the provider
// pool and the historical request records.
func FitEncoder(providers []models.Provider, history []pool.HistoryRecord, schema models.Schema) *Encoder {
	professionSet := make(map[string]bool)
	countySet := make(map[string]bool)
	genderSet := make(map[string]bool)

	for _, p := range providers {
		professionSet[p.Profession] = true
		for _, s := range p.Skills {
			professionSet[s] = true
		}
		countySet[p.County] = true
		if schema.HasGender && p.Gender != "" {
			genderSet[p.Gender] = true
		}
	}
	for _, h := range history {
		professionSet[h.JobType] = true
		professionSet[h.ProviderProfession] = true
		if h.County != "" {
			countySet[h.County] = true
		}
	}

	e := &Encoder{
		professions: indexOf(professionSet),
		counties:    indexOf(countySet),
		hasGender:   schema.HasGender,
	}
	if e.hasGender {
		e.genders = indexOf(genderSet)
	}
	e.dim = len(e.professions) + len(e.counties) + len(e.genders) + 3
	return e
}

func indexOf(set map[string]bool) map[string]int {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i
	}
	return index
}

// Dim returns the encoded vector length.
func (e *Encoder) Dim() int {
	return e.dim
}

// KnowsProfession reports whether jobType is in the fitted skill vocabulary.
func (e *Encoder) KnowsProfession(jobType string) bool {
	_, ok := e.professions[jobType]
	return ok
}

func (e *Encoder) encode(profession, county, gender string, rating float64, responseCode, satisfactionCode int) []float64 {
	vec := make([]float64, e.dim)
	offset := 0
	if idx, ok := e.professions[profession]; ok {
		vec[offset+idx] = 1
	}
	offset += len(e.professions)
	if idx, ok := e.counties[county]; ok {
		vec[offset+idx] = 1
	}
	offset += len(e.counties)
	if e.hasGender {
		if idx, ok := e.genders[gender]; ok {
			vec[offset+idx] = 1
		}
		offset += len(e.genders)
	}
	vec[offset] = rating
	vec[offset+1] = float64(responseCode)
	vec[offset+2] = float64(satisfactionCode)
	return vec
}

// EncodeProvider vectorizes one candidate.
func (e *Encoder) EncodeProvider(p models.Provider) []float64 {
	return e.encode(p.Profession, p.County, p.Gender, p.Rating,
		models.ResponseTimeCode(p.ResponseTime), models.SatisfactionCode(p.Satisfaction))
}

// EncodeRequest vectorizes a request by substituting the job type and county
// into the typical-requester template. A single shared template stands in for
// personalized request features; this is a deliberate approximation.
func (e *Encoder) EncodeRequest(jobType, county string) []float64 {
	return e.encode(jobType, county, "",
		requestDefaultRating, requestDefaultResponseCode, requestDefaultSatisfaction)
}

// Cosine returns the cosine similarity of two equal-length vectors, 0 when
// either has zero magnitude.
func Cosine(a, b []float64) float64 {
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(a, b) / (normA * normB)
}
