package derived

import (
	"sort"
	"time"

	"homecare-data/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey list ordering of the patient register.
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByStartDate SortKey = "start_date"
	SortByRisk      SortKey = "risk"
)

// ParseSortKey accepts the API names and the dashboard's Italian ones.
// Empty selects SortByName.
func ParseSortKey(s string) (SortKey, bool) {
	switch normalize(s) {
	case "", "name", "nome":
		return SortByName, true
	case "start_date", "startdate", "datainizio", "data_inizio":
		return SortByStartDate, true
	case "risk", "rischio":
		return SortByRisk, true
	}
	return "", false
}

// All comparators are applied with stable sorts; equal keys keep input order.

func sortTimeline(events []TimelineEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].at.After(events[j].at)
	})
}

func sortPersons(ps []*domain.AssistedPerson, key SortKey) error {
	switch key {
	case SortByName, "":
		// collators keep internal buffers, one per call
		c := collate.New(language.Italian, collate.IgnoreCase)
		sort.SliceStable(ps, func(i, j int) bool {
			if r := c.CompareString(ps[i].Surname, ps[j].Surname); r != 0 {
				return r < 0
			}
			return c.CompareString(ps[i].Name, ps[j].Name) < 0
		})
	case SortByStartDate:
		starts := make(map[*domain.AssistedPerson]time.Time, len(ps))
		for _, p := range ps {
			if p.CareStartDate.IsZero() {
				continue
			}
			t, err := parseDate(p.ID, "data_inizio_cure", p.CareStartDate)
			if err != nil {
				return err
			}
			starts[p] = t
		}
		// newest first, undated last
		sort.SliceStable(ps, func(i, j int) bool {
			ti, iok := starts[ps[i]]
			tj, jok := starts[ps[j]]
			if iok != jok {
				return iok
			}
			return ti.After(tj)
		})
	case SortByRisk:
		ranks := make(map[*domain.AssistedPerson]int, len(ps))
		for _, p := range ps {
			ranks[p] = ClassifyRisk(p).Level.Rank()
		}
		sort.SliceStable(ps, func(i, j int) bool {
			return ranks[ps[i]] > ranks[ps[j]]
		})
	}
	return nil
}

func sortVisitLogs(logs []*domain.VisitLog, dates map[*domain.VisitLog]time.Time) {
	sort.SliceStable(logs, func(i, j int) bool {
		ti, tj := dates[logs[i]], dates[logs[j]]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return logs[i].StartTime > logs[j].StartTime
	})
}
