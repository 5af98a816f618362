// Package derived computes the read-only views shown by the dashboard: risk
// class, record completeness, document expiry, patient timelines and the list
// filter/sort pipeline. Every function works on the snapshot it is given and
// never writes back to the record store.
package derived

import (
	"errors"
	"fmt"
	"time"

	"homecare-data/internal/domain"
)

// ErrEmptyCollection is returned when an average is requested over no records.
var ErrEmptyCollection = errors.New("empty collection")

// ValidationError a stored value that cannot be interpreted, e.g. a date
// that does not parse.
type ValidationError struct {
	RecordID int64
	Field    string
	Value    string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d: invalid %s %q: %v", e.RecordID, e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func parseDate(recordID int64, field string, d domain.Date) (time.Time, error) {
	t, err := d.Time()
	if err != nil {
		return time.Time{}, &ValidationError{RecordID: recordID, Field: field, Value: string(d), Err: err}
	}
	return t, nil
}
