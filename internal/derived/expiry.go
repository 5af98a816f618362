package derived

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"homecare-data/internal/domain"
)

// DefaultExpiryWindowDays a document expiring within this many days is
// reported as ExpiringSoon.
const DefaultExpiryWindowDays = 30

// ExpiryStatus state of a dated compliance document.
type ExpiryStatus string

const (
	StatusUnverified   ExpiryStatus = "unverified"
	StatusExpired      ExpiryStatus = "expired"
	StatusExpiringSoon ExpiryStatus = "expiring_soon"
	StatusValid        ExpiryStatus = "valid"
	StatusNotRequired  ExpiryStatus = "not_required"
)

// Label Italian display text.
func (s ExpiryStatus) Label() string {
	switch s {
	case StatusExpired:
		return "Scaduto"
	case StatusExpiringSoon:
		return "In scadenza"
	case StatusValid:
		return "Valido"
	case StatusNotRequired:
		return domain.DocumentStateNotRequired
	}
	return "Da verificare"
}

// Urgency how soon someone has to act on a document.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyNone     Urgency = "none"
	UrgencyUnknown  Urgency = "unknown"
)

// Expiry evaluation result. DaysUntil is nil when there is no date.
type Expiry struct {
	Status      ExpiryStatus `json:"status"`
	StatusLabel string       `json:"status_label"`
	Urgency     Urgency      `json:"urgency"`
	DaysUntil   *int         `json:"days_until,omitempty"`
}

func newExpiry(status ExpiryStatus, days *int) Expiry {
	e := Expiry{Status: status, StatusLabel: status.Label(), DaysUntil: days}
	switch status {
	case StatusExpired:
		e.Urgency = UrgencyCritical
	case StatusExpiringSoon:
		e.Urgency = UrgencyWarning
	case StatusValid, StatusNotRequired:
		e.Urgency = UrgencyNone
	default:
		e.Urgency = UrgencyUnknown
	}
	return e
}

// ExpiryEvaluator classifies expiry dates against a lookahead window.
// The zero value uses DefaultExpiryWindowDays.
type ExpiryEvaluator struct {
	WindowDays int
}

// NewExpiryEvaluator windowDays <= 0 selects the default window.
func NewExpiryEvaluator(windowDays int) ExpiryEvaluator {
	return ExpiryEvaluator{WindowDays: windowDays}
}

// Window effective lookahead in days.
func (e ExpiryEvaluator) Window() int {
	if e.WindowDays <= 0 {
		return DefaultExpiryWindowDays
	}
	return e.WindowDays
}

// Evaluate classifies expiry relative to ref. days = ceil((expiry-ref)/24h):
// negative is Expired, 0..Window is ExpiringSoon, beyond is Valid. An absent
// date is Unverified; a malformed one is a *ValidationError.
func (e ExpiryEvaluator) Evaluate(expiry domain.Date, ref time.Time) (Expiry, error) {
	if expiry.IsZero() {
		return newExpiry(StatusUnverified, nil), nil
	}
	t, err := parseDate(0, "data_scadenza", expiry)
	if err != nil {
		return Expiry{}, err
	}
	days := int(math.Ceil(t.Sub(ref).Hours() / 24))
	switch {
	case days < 0:
		return newExpiry(StatusExpired, &days), nil
	case days <= e.Window():
		return newExpiry(StatusExpiringSoon, &days), nil
	}
	return newExpiry(StatusValid, &days), nil
}

// EvaluateExpiry Evaluate with the default window.
func EvaluateExpiry(expiry domain.Date, ref time.Time) (Expiry, error) {
	return ExpiryEvaluator{}.Evaluate(expiry, ref)
}

// DocumentCompliance one of the four dated documents of a personnel file.
type DocumentCompliance struct {
	Kind      domain.DocumentKind `json:"kind"`
	Label     string              `json:"label"`
	ExpiresOn domain.Date         `json:"expires_on,omitempty"`
	HasFile   bool                `json:"has_file"`
	Expiry
}

// TrainingCompliance a continuing-education entry.
type TrainingCompliance struct {
	Title     string      `json:"title"`
	ExpiresOn domain.Date `json:"expires_on,omitempty"`
	Expiry
}

// OperatorCompliance personnel-file status of one operator. The counters
// only cover Documents; not-required documents are never counted.
type OperatorCompliance struct {
	OperatorID          int64                `json:"operator_id"`
	Operator            string               `json:"operator"`
	Role                string               `json:"role"`
	Documents           []DocumentCompliance `json:"documents"`
	ContinuingEducation []TrainingCompliance `json:"continuing_education"`
	ExpiredCount        int                  `json:"expired_count"`
	ExpiringSoonCount   int                  `json:"expiring_soon_count"`
}

// NeedsAttention reports any expired or expiring document.
func (c *OperatorCompliance) NeedsAttention() bool {
	return c.ExpiredCount > 0 || c.ExpiringSoonCount > 0
}

// Compliance evaluates the operator's fitness certificate, safety training,
// BLSD and driving license, plus every continuing-education entry.
func (e ExpiryEvaluator) Compliance(op *domain.Operator, ref time.Time) (*OperatorCompliance, error) {
	out := &OperatorCompliance{
		OperatorID: op.ID,
		Operator:   op.FullName(),
		Role:       op.Role,
		Documents:  make([]DocumentCompliance, 0, len(domain.ComplianceDocuments)),
	}

	for _, kind := range domain.ComplianceDocuments {
		doc := op.PersonnelFile.Document(kind)
		dc := DocumentCompliance{
			Kind:      kind,
			Label:     kind.Label(),
			ExpiresOn: doc.ExpiresOn,
			HasFile:   doc.File != nil,
		}
		if kind == domain.DocumentBLSD && doc.NotRequired() {
			dc.Expiry = newExpiry(StatusNotRequired, nil)
			out.Documents = append(out.Documents, dc)
			continue
		}
		ex, err := e.Evaluate(doc.ExpiresOn, ref)
		if err != nil {
			return nil, withRecord(err, op.ID, fmt.Sprintf("fascicolo.%s.data_scadenza", kind))
		}
		dc.Expiry = ex
		switch ex.Status {
		case StatusExpired:
			out.ExpiredCount++
		case StatusExpiringSoon:
			out.ExpiringSoonCount++
		}
		out.Documents = append(out.Documents, dc)
	}

	for i, tr := range op.PersonnelFile.ContinuingEducation {
		ex, err := e.Evaluate(tr.ExpiresOn, ref)
		if err != nil {
			return nil, withRecord(err, op.ID, fmt.Sprintf("fascicolo.formazione_continua[%d].data_scadenza", i))
		}
		out.ContinuingEducation = append(out.ContinuingEducation, TrainingCompliance{
			Title:     tr.Title,
			ExpiresOn: tr.ExpiresOn,
			Expiry:    ex,
		})
	}
	return out, nil
}

// ExpiringDocument roster-wide alert entry.
type ExpiringDocument struct {
	OperatorID int64               `json:"operator_id"`
	Operator   string              `json:"operator"`
	Document   domain.DocumentKind `json:"document"`
	Label      string              `json:"label"`
	ExpiresOn  domain.Date         `json:"expires_on"`
	Expiry
}

// ExpiringDocuments expired and expiring-soon documents across the roster,
// soonest expiry first.
func (e ExpiryEvaluator) ExpiringDocuments(ops []*domain.Operator, ref time.Time) ([]ExpiringDocument, error) {
	var out []ExpiringDocument
	for _, op := range ops {
		c, err := e.Compliance(op, ref)
		if err != nil {
			return nil, err
		}
		for _, d := range c.Documents {
			if d.Status != StatusExpired && d.Status != StatusExpiringSoon {
				continue
			}
			out = append(out, ExpiringDocument{
				OperatorID: op.ID,
				Operator:   c.Operator,
				Document:   d.Kind,
				Label:      d.Label,
				ExpiresOn:  d.ExpiresOn,
				Expiry:     d.Expiry,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DaysUntil < *out[j].DaysUntil
	})
	return out, nil
}

// ComplianceTotals roster-wide counters.
type ComplianceTotals struct {
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiring_soon"`
}

// Totals sums the per-operator counters.
func Totals(cs []*OperatorCompliance) ComplianceTotals {
	var t ComplianceTotals
	for _, c := range cs {
		t.Expired += c.ExpiredCount
		t.ExpiringSoon += c.ExpiringSoonCount
	}
	return t
}

func withRecord(err error, recordID int64, field string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		cp := *ve
		cp.RecordID = recordID
		cp.Field = field
		return &cp
	}
	return err
}
