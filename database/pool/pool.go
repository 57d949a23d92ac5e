// Package pool loads and serves the candidate pool: the set of artisans with
// their static attributes, read once at startup from a CSV dataset and
// immutable afterwards.
package pool

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"fundimatch/models"

	"go.uber.org/zap"
)

// Required dataset columns. Their absence is a configuration error and aborts
// startup; optional columns are recorded in the Schema instead.
var requiredColumns = []string{"name", "skills", "county"}

// ConfigError reports a dataset that cannot back a candidate pool at all
// (missing file, unreadable CSV, missing required columns). It is fatal at
// startup and never occurs mid-request.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dataset configuration: %s", e.Message)
}

// CandidatePool holds the loaded providers plus the vocabulary derived from
// them. All accessors return data that must be treated as read-only.
type CandidatePool struct {
	providers   []models.Provider
	schema      models.Schema
	professions []string
	counties    []string
}

// New builds a pool directly from providers, deriving the vocabulary.
func New(providers []models.Provider, schema models.Schema) *CandidatePool {
	cp := &CandidatePool{providers: providers, schema: schema}
	cp.buildVocabulary()
	return cp
}

// LoadCSV reads the dataset at path into a CandidatePool. Malformed rows are
// logged and skipped; one bad row never aborts the load.
func LoadCSV(path string, logger *zap.Logger) (*CandidatePool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("open dataset %s: %v", path, err)}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("read dataset header: %v", err)}
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, &ConfigError{Message: fmt.Sprintf("dataset missing required column %q", required)}
		}
	}

	_, hasLat := cols["lat"]
	_, hasLong := cols["long"]
	schema := models.Schema{
		HasRating:       has(cols, "rating"),
		HasResponseTime: has(cols, "responseTime"),
		HasSatisfaction: has(cols, "satisfaction"),
		HasGender:       has(cols, "gender"),
		HasCoordinates:  hasLat && hasLong,
	}

	cp := &CandidatePool{schema: schema}
	seen := make(map[string]bool)
	rowNum := 0
	for {
		record, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			// The reader recovers after a ParseError, so a syntactically
			// broken row is skipped like any other malformed row instead of
			// truncating the dataset.
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rowNum++
				logger.Warn("Skipping malformed dataset row",
					zap.Int("row", rowNum), zap.Error(err))
				continue
			}
			return nil, &ConfigError{Message: fmt.Sprintf("read dataset: %v", err)}
		}
		rowNum++
		p, perr := parseRow(record, cols, schema, rowNum)
		if perr != nil {
			logger.Warn("Skipping malformed dataset row",
				zap.Int("row", rowNum), zap.Error(perr))
			continue
		}
		if seen[p.ID] {
			logger.Warn("Skipping duplicate provider id",
				zap.Int("row", rowNum), zap.String("id", p.ID))
			continue
		}
		seen[p.ID] = true
		cp.providers = append(cp.providers, p)
	}

	if len(cp.providers) == 0 {
		return nil, &ConfigError{Message: fmt.Sprintf("dataset %s has no usable rows", path)}
	}

	cp.buildVocabulary()
	logger.Info("Candidate pool loaded",
		zap.Int("providers", len(cp.providers)),
		zap.Int("professions", len(cp.professions)),
		zap.Int("counties", len(cp.counties)))
	return cp, nil
}

func has(cols map[string]int, name string) bool {
	_, ok := cols[name]
	return ok
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseRow(record []string, cols map[string]int, schema models.Schema, rowNum int) (models.Provider, error) {
	var p models.Provider

	p.Name = field(record, cols, "name")
	if p.Name == "" {
		return p, fmt.Errorf("empty name")
	}

	// Row position backs the id when the id cell is blank or the column is absent.
	p.ID = field(record, cols, "id")
	if p.ID == "" {
		p.ID = strconv.Itoa(rowNum)
	}

	rawSkills := field(record, cols, "skills")
	if err := json.Unmarshal([]byte(rawSkills), &p.Skills); err != nil {
		return p, fmt.Errorf("skills column is not a JSON array: %w", err)
	}
	if len(p.Skills) == 0 {
		return p, fmt.Errorf("empty skill set")
	}
	for i, s := range p.Skills {
		p.Skills[i] = strings.ToLower(strings.TrimSpace(s))
	}
	p.Profession = field(record, cols, "profession")
	if p.Profession == "" {
		p.Profession = p.Skills[0]
	}
	p.Profession = strings.ToLower(p.Profession)

	p.County = field(record, cols, "county")
	if p.County == "" {
		return p, fmt.Errorf("empty county")
	}

	if schema.HasRating {
		if raw := field(record, cols, "rating"); raw != "" {
			rating, err := strconv.ParseFloat(raw, 64)
			if err != nil || rating < 0 || rating > 5 {
				return p, fmt.Errorf("invalid rating %q", raw)
			}
			p.Rating = rating
		}
	}
	if schema.HasResponseTime {
		if raw := field(record, cols, "responseTime"); raw != "" {
			minutes, err := strconv.Atoi(raw)
			if err != nil || minutes < 0 {
				return p, fmt.Errorf("invalid responseTime %q", raw)
			}
			p.ResponseTime = minutes
		}
	}
	if schema.HasSatisfaction {
		p.Satisfaction = strings.ToLower(field(record, cols, "satisfaction"))
	}
	if schema.HasGender {
		p.Gender = strings.ToLower(field(record, cols, "gender"))
	}
	if schema.HasCoordinates {
		rawLat := field(record, cols, "lat")
		rawLong := field(record, cols, "long")
		if rawLat != "" && rawLong != "" {
			lat, errLat := strconv.ParseFloat(rawLat, 64)
			long, errLong := strconv.ParseFloat(rawLong, 64)
			if errLat != nil || errLong != nil || lat < -90 || lat > 90 || long < -180 || long > 180 {
				return p, fmt.Errorf("invalid coordinates (%q, %q)", rawLat, rawLong)
			}
			p.Location = models.GeoPoint{Lat: lat, Long: long}
			p.HasLocation = !p.Location.IsZero()
		}
	}

	return p, nil
}

func (cp *CandidatePool) buildVocabulary() {
	professionSet := make(map[string]bool)
	countySet := make(map[string]bool)
	for _, p := range cp.providers {
		professionSet[p.Profession] = true
		for _, s := range p.Skills {
			professionSet[s] = true
		}
		countySet[p.County] = true
	}
	cp.professions = sortedKeys(professionSet)
	cp.counties = sortedKeys(countySet)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Providers returns all loaded providers.
func (cp *CandidatePool) Providers() []models.Provider {
	return cp.providers
}

// Schema reports which optional columns the dataset carried.
func (cp *CandidatePool) Schema() models.Schema {
	return cp.schema
}

// Professions returns the sorted skill vocabulary.
func (cp *CandidatePool) Professions() []string {
	return cp.professions
}

// Counties returns the sorted set of known locales.
func (cp *CandidatePool) Counties() []string {
	return cp.counties
}

// Len returns the pool size.
func (cp *CandidatePool) Len() int {
	return len(cp.providers)
}
