package models

// GeoPoint is a plain lat/long pair. The zero value (0,0) is the sentinel
// for "location unknown" and must never be fed into distance filtering.
type GeoPoint struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// IsZero reports whether the point is the unknown-location sentinel.
func (p GeoPoint) IsZero() bool {
	return p.Lat == 0 && p.Long == 0
}

// Provider is one artisan in the candidate pool. The pool is loaded once at
// startup and treated as immutable afterwards.
type Provider struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Profession   string   `json:"profession"`             // primary skill
	Skills       []string `json:"skills"`                 // full skill set, includes Profession
	County       string   `json:"county"`                 // locale string, e.g. "Nairobi"
	Gender       string   `json:"gender,omitempty"`       // optional column
	Rating       float64  `json:"rating,omitempty"`       // 0–5, optional column
	ResponseTime int      `json:"responseTime,omitempty"` // minutes, optional column
	Satisfaction string   `json:"satisfaction,omitempty"` // ordinal label, optional column
	Location     GeoPoint `json:"location,omitempty"`     // optional dataset coordinates
	HasLocation  bool     `json:"-"`
}

// HasSkill reports whether jobType appears in the provider's skill set.
// The primary profession always counts as a skill.
func (p Provider) HasSkill(jobType string) bool {
	if p.Profession == jobType {
		return true
	}
	for _, s := range p.Skills {
		if s == jobType {
			return true
		}
	}
	return false
}

// Response time category codes, ordinal 1 (fastest) to 5 (slowest).
const (
	ResponseCodeSlowest = 5
)

// ResponseTimeCode maps raw response minutes onto the 1–5 ordinal scale.
func ResponseTimeCode(minutes int) int {
	switch {
	case minutes <= 5:
		return 1
	case minutes <= 15:
		return 2
	case minutes <= 30:
		return 3
	case minutes <= 45:
		return 4
	default:
		return ResponseCodeSlowest
	}
}

// Satisfaction category codes, ordinal 0 (poor) to 3 (excellent).
const (
	SatisfactionFair = 1
)

var satisfactionCodes = map[string]int{
	"poor":      0,
	"fair":      1,
	"good":      2,
	"excellent": 3,
}

// SatisfactionCode maps a satisfaction label onto the 0–3 ordinal scale.
// Unknown labels map to "fair".
func SatisfactionCode(label string) int {
	if code, ok := satisfactionCodes[label]; ok {
		return code
	}
	return SatisfactionFair
}
