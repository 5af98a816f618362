package derived

import (
	"time"

	"homecare-data/internal/domain"
)

// DiaryPeriod date window of the diary view.
type DiaryPeriod string

const (
	PeriodToday DiaryPeriod = "today"
	PeriodWeek  DiaryPeriod = "week"
	PeriodMonth DiaryPeriod = "month"
	PeriodAll   DiaryPeriod = "all"
)

// ParseDiaryPeriod accepts English and Italian names; empty is today, which
// is what the diary opens on.
func ParseDiaryPeriod(s string) (DiaryPeriod, bool) {
	switch normalize(s) {
	case "", "today", "oggi":
		return PeriodToday, true
	case "week", "settimana":
		return PeriodWeek, true
	case "month", "mese":
		return PeriodMonth, true
	case "all", "tutti":
		return PeriodAll, true
	}
	return "", false
}

// DiaryFilter zero IDs match everything.
type DiaryFilter struct {
	Period           DiaryPeriod
	OperatorID       int64
	AssistedPersonID int64
}

// FilterVisitLogs diary entries dated inside the period ending on ref's day
// (today: that day, week: last 7 days, month: last 30 days), newest first.
// Entries without a date only appear under PeriodAll, at the end.
func FilterVisitLogs(logs []*domain.VisitLog, f DiaryFilter, ref time.Time) ([]*domain.VisitLog, error) {
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	var from time.Time
	switch f.Period {
	case PeriodToday, "":
		from = dayStart
	case PeriodWeek:
		from = dayStart.AddDate(0, 0, -6)
	case PeriodMonth:
		from = dayStart.AddDate(0, 0, -29)
	}

	dates := make(map[*domain.VisitLog]time.Time, len(logs))
	out := make([]*domain.VisitLog, 0, len(logs))
	for _, l := range logs {
		if f.OperatorID != 0 && l.OperatorID != f.OperatorID {
			continue
		}
		if f.AssistedPersonID != 0 && l.AssistedPersonID != f.AssistedPersonID {
			continue
		}
		if l.Date.IsZero() {
			if f.Period == PeriodAll {
				out = append(out, l)
			}
			continue
		}
		t, err := parseDate(l.ID, "data", l.Date)
		if err != nil {
			return nil, err
		}
		if f.Period != PeriodAll && (t.Before(from) || !t.Before(dayEnd)) {
			continue
		}
		dates[l] = t
		out = append(out, l)
	}
	sortVisitLogs(out, dates)
	return out, nil
}
