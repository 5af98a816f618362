package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.now = func() time.Time { return time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestMemoryStore_InsertIntoEmptyAssignsOne(t *testing.T) {
	s := newTestMemoryStore()
	row, err := s.Insert(context.Background(), TableAssistedPersons, Row{"nome": "Maria"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])
	assert.Equal(t, "2024-07-15T09:00:00Z", row["created_at"])
}

func TestMemoryStore_InsertUsesMaxPlusOne(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	_, err := s.Insert(ctx, TableOperators, Row{"id": int64(3), "nome": "Anna"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, TableOperators, Row{"id": int64(7), "nome": "Mario"})
	require.NoError(t, err)

	row, err := s.Insert(ctx, TableOperators, Row{"nome": "Luca"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), row["id"])
}

func TestMemoryStore_DeletedIDsAreNotReusedBelowMax(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, err := s.Insert(ctx, TableVisitLogs, Row{"assistito_id": int64(1)})
		require.NoError(t, err)
	}
	for id := int64(2); id <= 6; id++ {
		require.NoError(t, s.Delete(ctx, TableVisitLogs, id))
	}

	rows, err := s.Fetch(ctx, TableVisitLogs, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row, err := s.Insert(ctx, TableVisitLogs, Row{"assistito_id": int64(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(8), row["id"])
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	_, err := s.Insert(ctx, TableHealthFolders, Row{"id": int64(2)})
	require.NoError(t, err)
	_, err = s.Insert(ctx, TableHealthFolders, Row{"id": int64(2)})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestMemoryStore_UpdateMerges(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	_, err := s.Insert(ctx, TableAssistedPersons, Row{
		"nome":      "Maria",
		"cognome":   "Bianchi",
		"indirizzo": "Via Roma, 123",
		"caregiver": map[string]any{"nome": "Giuseppe", "telefono": "339-1234567"},
	})
	require.NoError(t, err)

	row, err := s.Update(ctx, TableAssistedPersons, 1, Row{
		"indirizzo":    "Via Milano, 4",
		"stato_attivo": false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Via Milano, 4", row["indirizzo"])
	assert.Equal(t, false, row["stato_attivo"])
	assert.Equal(t, "Maria", row["nome"])
	assert.Equal(t, "Bianchi", row["cognome"])
	assert.Equal(t, map[string]any{"nome": "Giuseppe", "telefono": "339-1234567"}, row["caregiver"])
}

func TestMemoryStore_UpdateRejectsBadPatches(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	_, err := s.Insert(ctx, TableAssistedPersons, Row{"nome": "Maria"})
	require.NoError(t, err)

	_, err = s.Update(ctx, TableAssistedPersons, 1, Row{"codiceFiscale": "X"})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = s.Update(ctx, TableAssistedPersons, 1, Row{"id": int64(9)})
	assert.ErrorIs(t, err, ErrReadOnlyColumn)

	_, err = s.Update(ctx, TableAssistedPersons, 42, Row{"nome": "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_InsertRejectsUnknownColumnsAndTables(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	_, err := s.Insert(ctx, TableOperators, Row{"nome": "Anna", "password": "x"})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = s.Insert(ctx, Table("pazienti"), Row{})
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = s.Fetch(ctx, Table("pazienti"), nil)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestMemoryStore_DeleteMissing(t *testing.T) {
	s := newTestMemoryStore()
	assert.ErrorIs(t, s.Delete(context.Background(), TableOperators, 1), ErrNotFound)
}

func TestMemoryStore_FetchOrder(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	for _, r := range []Row{
		{"cognome": "Verdi"},
		{"cognome": "Bianchi"},
		{},
		{"cognome": "Rossi"},
	} {
		_, err := s.Insert(ctx, TableAssistedPersons, r)
		require.NoError(t, err)
	}

	rows, err := s.Fetch(ctx, TableAssistedPersons, &Order{Column: "cognome"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 1, 3}, rowIDs(rows))

	rows, err = s.Fetch(ctx, TableAssistedPersons, &Order{Column: "cognome", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 4, 2}, rowIDs(rows))

	rows, err = s.Fetch(ctx, TableAssistedPersons, &Order{Column: "id", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2, 1}, rowIDs(rows))

	_, err = s.Fetch(ctx, TableAssistedPersons, &Order{Column: "eta"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestMemoryStore_RowsAreCopied(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()
	in := Row{"nome": "Maria", "rischi": []any{map[string]any{"livello": "Alto"}}}
	_, err := s.Insert(ctx, TableAssistedPersons, in)
	require.NoError(t, err)
	in["nome"] = "changed"

	rows, err := s.Fetch(ctx, TableAssistedPersons, nil)
	require.NoError(t, err)
	rows[0]["rischi"].([]any)[0].(map[string]any)["livello"] = "Basso"

	again, err := s.Fetch(ctx, TableAssistedPersons, nil)
	require.NoError(t, err)
	assert.Equal(t, "Maria", again[0]["nome"])
	assert.Equal(t, "Alto", again[0]["rischi"].([]any)[0].(map[string]any)["livello"])
}

func TestMemoryStore_ConcurrentInsertsGetDistinctIDs(t *testing.T) {
	s := newTestMemoryStore()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			row, err := s.Insert(ctx, TableVisitLogs, Row{})
			if err == nil {
				ids <- row["id"].(int64)
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	for id := int64(1); id <= n; id++ {
		assert.True(t, seen[id])
	}
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := newTestMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Fetch(ctx, TableOperators, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNextID(t *testing.T) {
	assert.Equal(t, int64(1), NextID(nil))
	assert.Equal(t, int64(8), NextID([]Row{{"id": int64(7)}, {"id": float64(3)}}))
	assert.Equal(t, int64(5), NextID([]Row{{"id": 4}, {"nome": "senza id"}}))
}

func rowIDs(rows []Row) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		id, _ := rowID(r)
		out = append(out, id)
	}
	return out
}
