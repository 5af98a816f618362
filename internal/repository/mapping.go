package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"homecare-data/internal/domain"
)

const (
	columnID        = "id"
	columnCreatedAt = "created_at"
)

var tableColumns = map[Table]map[string]struct{}{
	TableOperators:       columnsOf(domain.Operator{}),
	TableAssistedPersons: columnsOf(domain.AssistedPerson{}),
	TableHealthFolders:   columnsOf(domain.HealthFolder{}),
	TableVisitLogs:       columnsOf(domain.VisitLog{}),
}

// columnsOf top-level json tag names of a record struct.
func columnsOf(v any) map[string]struct{} {
	t := reflect.TypeOf(v)
	cols := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		cols[name] = struct{}{}
	}
	return cols
}

// Columns sorted column names of table.
func Columns(table Table) ([]string, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	out := make([]string, 0, len(cols))
	for c := range cols {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// HasColumn reports whether table has column.
func HasColumn(table Table, column string) bool {
	_, ok := tableColumns[table][column]
	return ok
}

// ValidateColumns every key of row must be a column of table.
func ValidateColumns(table Table, row Row) error {
	cols, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	for k := range row {
		if _, ok := cols[k]; !ok {
			return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, k)
		}
	}
	return nil
}

// ValidatePatch like ValidateColumns; id and created_at cannot be patched.
func ValidatePatch(table Table, patch Row) error {
	if err := ValidateColumns(table, patch); err != nil {
		return err
	}
	for _, c := range []string{columnID, columnCreatedAt} {
		if _, ok := patch[c]; ok {
			return fmt.Errorf("%w: %s.%s", ErrReadOnlyColumn, table, c)
		}
	}
	return nil
}

// ToRow converts a domain record into a row. Null columns are left out, which
// is the same as absent for every pointer and slice field.
func ToRow(v any) (Row, error) {
	row, err := encodeRow(v)
	if err != nil {
		return nil, err
	}
	for k, val := range row {
		if val == nil {
			delete(row, k)
		}
	}
	return row, nil
}

// encodeRow keeps null columns, so a merge with it clears them.
func encodeRow(v any) (Row, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	return DecodeRow(bytes.NewReader(b))
}

// FromRow fills out (a pointer to a domain record) from row.
func FromRow(row Row, out any) error {
	b, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	return nil
}

// DecodeRow reads one JSON object. Integral numbers become int64, others
// float64.
func DecodeRow(r io.Reader) (Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("decode row: not an object")
	}
	return Row(normalizeValue(m).(map[string]any)), nil
}

// decodeRows reads a JSON array of objects.
func decodeRows(b []byte) ([]Row, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var list []map[string]any
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	rows := make([]Row, 0, len(list))
	for _, m := range list {
		rows = append(rows, Row(normalizeValue(m).(map[string]any)))
	}
	return rows, nil
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, val := range x {
			x[k] = normalizeValue(val)
		}
		return x
	case []any:
		for i, val := range x {
			x[i] = normalizeValue(val)
		}
		return x
	}
	return v
}

func cloneRow(r Row) Row {
	if r == nil {
		return nil
	}
	return Row(cloneValue(map[string]any(r)).(map[string]any))
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = cloneValue(val)
		}
		return m
	case Row:
		return cloneRow(x)
	case []any:
		s := make([]any, len(x))
		for i, val := range x {
			s[i] = cloneValue(val)
		}
		return s
	}
	return v
}

// stampCreated sets created_at when the row does not carry one.
func stampCreated(row Row, now time.Time) {
	if v, ok := row[columnCreatedAt]; !ok || v == nil || v == "" {
		row[columnCreatedAt] = now.UTC().Format(time.RFC3339)
	}
}

func sortedKeys(r Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
