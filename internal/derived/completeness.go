package derived

import (
	"math"

	"homecare-data/internal/domain"
)

// RequiredFields checklist behind the completeness score.
var RequiredFields = []string{
	"name",
	"surname",
	"fiscalCode",
	"birthDate",
	"address",
	"caregiver.name",
	"caregiver.phone",
	"careStartDate",
	"diagnosis.primary",
	"consent.signed",
}

// IncompleteThreshold records scoring below this are counted as incomplete.
const IncompleteThreshold = 80

// ScoreCompleteness percentage of RequiredFields holding meaningful data,
// rounded half-up. Unsigned consent counts as missing.
func ScoreCompleteness(p *domain.AssistedPerson) int {
	if p == nil {
		return 0
	}
	satisfied := 0
	for _, path := range RequiredFields {
		if v, ok := ResolvePath(p, path); ok && truthy(v) {
			satisfied++
		}
	}
	return roundHalfUp(float64(satisfied) / float64(len(RequiredFields)) * 100)
}

// MissingFields paths of RequiredFields that are not satisfied.
func MissingFields(p *domain.AssistedPerson) []string {
	var missing []string
	for _, path := range RequiredFields {
		if v, ok := ResolvePath(p, path); !ok || !truthy(v) {
			missing = append(missing, path)
		}
	}
	return missing
}

// AverageCompleteness mean score over ps, rounded half-up.
// It returns ErrEmptyCollection when ps is empty.
func AverageCompleteness(ps []*domain.AssistedPerson) (int, error) {
	if len(ps) == 0 {
		return 0, ErrEmptyCollection
	}
	sum := 0
	for _, p := range ps {
		sum += ScoreCompleteness(p)
	}
	return roundHalfUp(float64(sum) / float64(len(ps))), nil
}

// PatientStats headline counters of the patient register.
type PatientStats struct {
	Total               int `json:"total"`
	Active              int `json:"active"`
	HighRisk            int `json:"high_risk"`
	Incomplete          int `json:"incomplete"`
	AverageCompleteness int `json:"average_completeness"`
}

// ComputePatientStats AverageCompleteness is 0 for an empty register.
func ComputePatientStats(ps []*domain.AssistedPerson) PatientStats {
	stats := PatientStats{Total: len(ps)}
	for _, p := range ps {
		if p.Active {
			stats.Active++
		}
		if ClassifyRisk(p).Level == domain.SeverityHigh {
			stats.HighRisk++
		}
		if ScoreCompleteness(p) < IncompleteThreshold {
			stats.Incomplete++
		}
	}
	if avg, err := AverageCompleteness(ps); err == nil {
		stats.AverageCompleteness = avg
	}
	return stats
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
