// Package repository is the boundary to the record store: four tables of
// snake_case rows reached through insert, fetch, merge-update and delete, plus
// the mapping between those rows and the domain records.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"math"
)

// Table logical collection of the record store.
type Table string

const (
	TableOperators       Table = "operatori"
	TableAssistedPersons Table = "assistiti"
	TableHealthFolders   Table = "fascicoli_sanitari"
	TableVisitLogs       Table = "diario_assistenziale"
)

// Tables every table the store must expose.
var Tables = []Table{TableOperators, TableAssistedPersons, TableHealthFolders, TableVisitLogs}

// Row one record keyed by snake_case column name.
type Row map[string]any

// Order full-table fetch ordering on a single column.
type Order struct {
	Column string
	Desc   bool
}

var (
	ErrNotFound       = errors.New("record not found")
	ErrUnknownTable   = errors.New("unknown table")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrReadOnlyColumn = errors.New("read-only column")
	ErrDuplicateID    = errors.New("duplicate id")
)

// RecordStore CRUD keyed by numeric id. Insert assigns max(id)+1 (1 on an
// empty table) unless the row carries an unused positive id. Update merges:
// supplied columns overwrite, omitted ones persist.
type RecordStore interface {
	Insert(ctx context.Context, table Table, row Row) (Row, error)
	Fetch(ctx context.Context, table Table, order *Order) ([]Row, error)
	Update(ctx context.Context, table Table, id int64, patch Row) (Row, error)
	Delete(ctx context.Context, table Table, id int64) error
}

// NextID max existing id + 1, or 1 for no rows.
func NextID(rows []Row) int64 {
	var max int64
	for _, r := range rows {
		if id, ok := rowID(r); ok && id > max {
			max = id
		}
	}
	return max + 1
}

func rowID(r Row) (int64, bool) {
	switch v := r["id"].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		if v == math.Trunc(v) {
			return int64(v), true
		}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}
