package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePostgREST serves a single table from memory, enough of the PostgREST
// dialect for the store.
type fakePostgREST struct {
	t    *testing.T
	mu   sync.Mutex
	rows []map[string]any
	reqs []*http.Request
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, r)

	assert.Equal(f.t, "secret", r.Header.Get("apikey"))
	assert.Equal(f.t, "Bearer secret", r.Header.Get("Authorization"))
	if r.URL.Path != "/rest/v1/operatori" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	match := func(row map[string]any) bool {
		return q.Get("id") == "" || q.Get("id") == "eq."+jsonNumber(row["id"])
	}
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		if q.Get("select") == "id" {
			// order=id.desc&limit=1
			var last []map[string]any
			for _, row := range f.rows {
				if len(last) == 0 || row["id"].(float64) > last[0]["id"].(float64) {
					last = []map[string]any{{"id": row["id"]}}
				}
			}
			_ = json.NewEncoder(w).Encode(nonNil(last))
			return
		}
		_ = json.NewEncoder(w).Encode(nonNil(f.rows))
	case http.MethodPost:
		assert.Equal(f.t, "return=representation", r.Header.Get("Prefer"))
		var row map[string]any
		body, _ := io.ReadAll(r.Body)
		assert.NoError(f.t, json.Unmarshal(body, &row))
		for _, existing := range f.rows {
			if existing["id"] == row["id"] {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"code":"23505","message":"duplicate key"}`))
				return
			}
		}
		f.rows = append(f.rows, row)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]map[string]any{row})
	case http.MethodPatch:
		var patch map[string]any
		body, _ := io.ReadAll(r.Body)
		assert.NoError(f.t, json.Unmarshal(body, &patch))
		out := []map[string]any{}
		for _, row := range f.rows {
			if match(row) {
				for k, v := range patch {
					row[k] = v
				}
				out = append(out, row)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodDelete:
		out := []map[string]any{}
		kept := f.rows[:0]
		for _, row := range f.rows {
			if match(row) {
				out = append(out, row)
				continue
			}
			kept = append(kept, row)
		}
		f.rows = kept
		_ = json.NewEncoder(w).Encode(out)
	}
}

func jsonNumber(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func nonNil(rows []map[string]any) []map[string]any {
	if rows == nil {
		return []map[string]any{}
	}
	return rows
}

func newTestPostgREST(t *testing.T) (*fakePostgREST, *PostgRESTStore) {
	fake := &fakePostgREST{t: t}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store := NewPostgRESTStore(srv.URL, "secret", zap.NewNop())
	store.now = func() time.Time { return time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC) }
	return fake, store
}

func TestPostgRESTStore_InsertAssignsIDs(t *testing.T) {
	_, store := newTestPostgREST(t)
	ctx := context.Background()

	row, err := store.Insert(ctx, TableOperators, Row{"nome": "Anna"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])
	assert.Equal(t, "2024-07-15T09:00:00Z", row["created_at"])

	_, err = store.Insert(ctx, TableOperators, Row{"id": int64(7), "nome": "Mario"})
	require.NoError(t, err)

	row, err = store.Insert(ctx, TableOperators, Row{"nome": "Luca"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), row["id"])

	_, err = store.Insert(ctx, TableOperators, Row{"id": int64(7)})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestPostgRESTStore_FetchSendsOrder(t *testing.T) {
	fake, store := newTestPostgREST(t)
	ctx := context.Background()
	_, err := store.Insert(ctx, TableOperators, Row{"nome": "Anna"})
	require.NoError(t, err)

	rows, err := store.Fetch(ctx, TableOperators, &Order{Column: "cognome", Desc: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Anna", rows[0]["nome"])

	last := fake.reqs[len(fake.reqs)-1]
	assert.Equal(t, "cognome.desc", last.URL.Query().Get("order"))
	assert.Equal(t, "*", last.URL.Query().Get("select"))
}

func TestPostgRESTStore_UpdateAndDelete(t *testing.T) {
	_, store := newTestPostgREST(t)
	ctx := context.Background()
	_, err := store.Insert(ctx, TableOperators, Row{"nome": "Anna", "stato": "Attivo"})
	require.NoError(t, err)

	row, err := store.Update(ctx, TableOperators, 1, Row{"stato": "Sospeso"})
	require.NoError(t, err)
	assert.Equal(t, "Sospeso", row["stato"])
	assert.Equal(t, "Anna", row["nome"])

	_, err = store.Update(ctx, TableOperators, 2, Row{"stato": "Sospeso"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, TableOperators, 1))
	assert.ErrorIs(t, store.Delete(ctx, TableOperators, 1), ErrNotFound)
}

func TestPostgRESTStore_ServerError(t *testing.T) {
	_, store := newTestPostgREST(t)
	_, err := store.Fetch(context.Background(), TableAssistedPersons, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
