package derived

import (
	"fmt"
	"strconv"
	"time"

	"homecare-data/internal/domain"
)

// MaxTimelineVisits number of visits shown on a timeline. They are the last
// entries of the visit list in stored order, not the most recent by date.
const MaxTimelineVisits = 5

// TimelineCategory kind of timeline event.
type TimelineCategory string

const (
	CategoryStart      TimelineCategory = "Inizio"
	CategoryAssessment TimelineCategory = "Valutazione"
	CategoryVisit      TimelineCategory = "Prestazione"
	CategoryUpdate     TimelineCategory = "Aggiornamento"
)

// TimelineEvent dated entry of a patient's care history.
type TimelineEvent struct {
	Date        domain.Date      `json:"date"`
	Category    TimelineCategory `json:"category"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	ColorHint   string           `json:"color_hint"`

	at time.Time
}

// At parsed event date.
func (e TimelineEvent) At() time.Time { return e.at }

// BuildTimeline assembles care start, assessments, the last
// MaxTimelineVisits stored visits and care-plan updates, newest first.
// Events sharing a date keep that emission order. Entries without a date are
// left out; malformed dates fail with *ValidationError.
func BuildTimeline(p *domain.AssistedPerson) ([]TimelineEvent, error) {
	var events []TimelineEvent
	add := func(field string, d domain.Date, ev TimelineEvent) error {
		if d.IsZero() {
			return nil
		}
		t, err := parseDate(p.ID, field, d)
		if err != nil {
			return err
		}
		ev.Date = d
		ev.at = t
		events = append(events, ev)
		return nil
	}

	if err := add("data_inizio_cure", p.CareStartDate, TimelineEvent{
		Category:    CategoryStart,
		Description: "Inizio cure domiciliari",
		Icon:        "🏠",
		ColorHint:   "blue",
	}); err != nil {
		return nil, err
	}

	for i, a := range p.Assessments {
		if err := add(fmt.Sprintf("valutazioni[%d].data", i), a.Date, TimelineEvent{
			Category:    CategoryAssessment,
			Description: a.Instrument + ": " + strconv.FormatFloat(a.Score, 'f', -1, 64),
			Icon:        "📊",
			ColorHint:   "purple",
		}); err != nil {
			return nil, err
		}
	}

	first := 0
	if len(p.Visits) > MaxTimelineVisits {
		first = len(p.Visits) - MaxTimelineVisits
	}
	for i := first; i < len(p.Visits); i++ {
		v := p.Visits[i]
		if err := add(fmt.Sprintf("prestazioni[%d].data", i), v.Date, TimelineEvent{
			Category:    CategoryVisit,
			Description: v.Type + " - " + v.Operator,
			Icon:        "🩺",
			ColorHint:   "green",
		}); err != nil {
			return nil, err
		}
	}

	if p.CarePlan != nil {
		for i, u := range p.CarePlan.Updates {
			if err := add(fmt.Sprintf("piano_trattamento.aggiornamenti[%d].data", i), u.Date, TimelineEvent{
				Category:    CategoryUpdate,
				Description: u.Description,
				Icon:        "📝",
				ColorHint:   "orange",
			}); err != nil {
				return nil, err
			}
		}
	}

	sortTimeline(events)
	return events, nil
}
