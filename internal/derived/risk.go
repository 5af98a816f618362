package derived

import "homecare-data/internal/domain"

// RiskClass ceiling severity of a patient's recorded risks.
type RiskClass struct {
	Level domain.Severity `json:"level"`
	Hint  string          `json:"color_hint"`
}

// ClassifyRisk returns High if any risk is High, else Medium if any is
// Medium, else Low. No risks at all is Low.
func ClassifyRisk(p *domain.AssistedPerson) RiskClass {
	level := domain.SeverityLow
	if p != nil {
		for _, r := range p.Risks {
			if r.Severity == domain.SeverityHigh {
				level = domain.SeverityHigh
				break
			}
			if r.Severity == domain.SeverityMedium {
				level = domain.SeverityMedium
			}
		}
	}
	return RiskClass{Level: level, Hint: riskHint(level)}
}

func riskHint(level domain.Severity) string {
	switch level {
	case domain.SeverityHigh:
		return "red"
	case domain.SeverityMedium:
		return "yellow"
	}
	return "green"
}

// ParseSeverity accepts stored values and their English names, any case.
func ParseSeverity(s string) (domain.Severity, bool) {
	switch normalize(s) {
	case "alto", "high":
		return domain.SeverityHigh, true
	case "medio", "medium":
		return domain.SeverityMedium, true
	case "basso", "low":
		return domain.SeverityLow, true
	}
	return "", false
}
