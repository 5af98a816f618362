package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore RecordStore kept in process memory, used when no database is
// configured and in tests. Rows are copied on the way in and out.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[Table][]Row
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: map[Table][]Row{},
		now:    time.Now,
	}
}

var _ RecordStore = (*MemoryStore)(nil)

func (s *MemoryStore) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateColumns(table, row); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	stored := cloneRow(row)
	if stored == nil {
		stored = Row{}
	}
	id, _ := rowID(stored)
	if id <= 0 {
		id = NextID(rows)
	} else if indexOf(rows, id) >= 0 {
		return nil, fmt.Errorf("%w: %s id %d", ErrDuplicateID, table, id)
	}
	stored[columnID] = id
	stampCreated(stored, s.now())

	s.tables[table] = append(rows, stored)
	return cloneRow(stored), nil
}

func (s *MemoryStore) Fetch(ctx context.Context, table Table, order *Order) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := tableColumns[table]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if order != nil && !HasColumn(table, order.Column) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, order.Column)
	}

	s.mu.RLock()
	out := make([]Row, 0, len(s.tables[table]))
	for _, r := range s.tables[table] {
		out = append(out, cloneRow(r))
	}
	s.mu.RUnlock()

	if order != nil {
		col := order.Column
		sort.SliceStable(out, func(i, j int) bool {
			c := compareValues(out[i][col], out[j][col])
			if order.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, table Table, id int64, patch Row) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidatePatch(table, patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	i := indexOf(rows, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s id %d", ErrNotFound, table, id)
	}
	for k, v := range patch {
		rows[i][k] = cloneValue(v)
	}
	return cloneRow(rows[i]), nil
}

func (s *MemoryStore) Delete(ctx context.Context, table Table, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := tableColumns[table]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.tables[table]
	i := indexOf(rows, id)
	if i < 0 {
		return fmt.Errorf("%w: %s id %d", ErrNotFound, table, id)
	}
	s.tables[table] = append(rows[:i:i], rows[i+1:]...)
	return nil
}

func indexOf(rows []Row, id int64) int {
	for i, r := range rows {
		if rid, ok := rowID(r); ok && rid == id {
			return i
		}
	}
	return -1
}

// compareValues orders nulls after everything else, like PostgreSQL's
// default ascending order.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
