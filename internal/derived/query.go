package derived

import (
	"fmt"
	"strings"

	"homecare-data/internal/domain"
)

// StatusFilter care-episode filter.
type StatusFilter string

const (
	StatusAll    StatusFilter = "all"
	StatusActive StatusFilter = "active"
	StatusClosed StatusFilter = "closed"
)

// ParseStatusFilter accepts English and Italian values; empty is All.
func ParseStatusFilter(s string) (StatusFilter, bool) {
	switch normalize(s) {
	case "", "all", "tutti":
		return StatusAll, true
	case "active", "attivi", "attivo":
		return StatusActive, true
	case "closed", "chiusi", "chiuso":
		return StatusClosed, true
	}
	return "", false
}

// QueryOptions list-view parameters. A zero Risk means all levels.
type QueryOptions struct {
	Search string
	Status StatusFilter
	Risk   domain.Severity
	Sort   SortKey
}

// Query filters by search term, status and risk level (AND), then sorts.
// The input slice is not modified.
func Query(ps []*domain.AssistedPerson, opts QueryOptions) ([]*domain.AssistedPerson, error) {
	term := strings.ToLower(strings.TrimSpace(opts.Search))
	out := make([]*domain.AssistedPerson, 0, len(ps))
	for _, p := range ps {
		if p == nil {
			continue
		}
		if !matchesSearch(p, term) {
			continue
		}
		switch opts.Status {
		case StatusActive:
			if !p.Active {
				continue
			}
		case StatusClosed:
			if p.Active {
				continue
			}
		}
		if opts.Risk != "" && ClassifyRisk(p).Level != opts.Risk {
			continue
		}
		out = append(out, p)
	}
	if err := sortPersons(out, opts.Sort); err != nil {
		return nil, fmt.Errorf("sort by %s: %w", opts.Sort, err)
	}
	return out, nil
}

// ActivePersons persons currently under care, in input order.
func ActivePersons(ps []*domain.AssistedPerson) []*domain.AssistedPerson {
	var out []*domain.AssistedPerson
	for _, p := range ps {
		if p != nil && p.Active {
			out = append(out, p)
		}
	}
	return out
}

func matchesSearch(p *domain.AssistedPerson, term string) bool {
	if term == "" {
		return true
	}
	for _, field := range []string{p.Name, p.Surname, p.FiscalCode, p.PrimaryDiagnosis()} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
