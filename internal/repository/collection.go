package repository

import (
	"context"
	"fmt"

	"homecare-data/internal/domain"
)

// Collection typed access to one table. T is the domain record stored there.
type Collection[T any] struct {
	store RecordStore
	table Table
	order *Order
}

type (
	AssistedPersonRepo = Collection[domain.AssistedPerson]
	OperatorRepo       = Collection[domain.Operator]
	HealthFolderRepo   = Collection[domain.HealthFolder]
	VisitLogRepo       = Collection[domain.VisitLog]
)

// Snapshots are fetched in id order, which is also insertion order.
var byID = &Order{Column: columnID}

func NewAssistedPersonRepo(s RecordStore) *AssistedPersonRepo {
	return &AssistedPersonRepo{store: s, table: TableAssistedPersons, order: byID}
}

func NewOperatorRepo(s RecordStore) *OperatorRepo {
	return &OperatorRepo{store: s, table: TableOperators, order: byID}
}

func NewHealthFolderRepo(s RecordStore) *HealthFolderRepo {
	return &HealthFolderRepo{store: s, table: TableHealthFolders, order: byID}
}

func NewVisitLogRepo(s RecordStore) *VisitLogRepo {
	return &VisitLogRepo{store: s, table: TableVisitLogs, order: byID}
}

// Table backing table name.
func (c *Collection[T]) Table() Table { return c.table }

// List full snapshot of the table.
func (c *Collection[T]) List(ctx context.Context) ([]*T, error) {
	rows, err := c.store.Fetch(ctx, c.table, c.order)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(rows))
	for _, r := range rows {
		v, err := c.decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Get the record with id, ErrNotFound if absent.
func (c *Collection[T]) Get(ctx context.Context, id int64) (*T, error) {
	rows, err := c.store.Fetch(ctx, c.table, nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if rid, ok := rowID(r); ok && rid == id {
			return c.decode(r)
		}
	}
	return nil, fmt.Errorf("%w: %s id %d", ErrNotFound, c.table, id)
}

// Create inserts v; a zero id is assigned by the store.
func (c *Collection[T]) Create(ctx context.Context, v *T) (*T, error) {
	row, err := ToRow(v)
	if err != nil {
		return nil, err
	}
	if id, ok := rowID(row); ok && id == 0 {
		delete(row, columnID)
	}
	stored, err := c.store.Insert(ctx, c.table, row)
	if err != nil {
		return nil, err
	}
	return c.decode(stored)
}

// Update merges patch (snake_case columns) into the record.
func (c *Collection[T]) Update(ctx context.Context, id int64, patch Row) (*T, error) {
	stored, err := c.store.Update(ctx, c.table, id, patch)
	if err != nil {
		return nil, err
	}
	return c.decode(stored)
}

// Replace overwrites every column of the record with v, keeping id and
// created_at.
func (c *Collection[T]) Replace(ctx context.Context, id int64, v *T) (*T, error) {
	row, err := encodeRow(v)
	if err != nil {
		return nil, err
	}
	delete(row, columnID)
	delete(row, columnCreatedAt)
	return c.Update(ctx, id, row)
}

func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	return c.store.Delete(ctx, c.table, id)
}

func (c *Collection[T]) decode(r Row) (*T, error) {
	v := new(T)
	if err := FromRow(r, v); err != nil {
		return nil, fmt.Errorf("%s: %w", c.table, err)
	}
	return v, nil
}
