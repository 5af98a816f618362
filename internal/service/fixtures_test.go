package service

import (
	"context"
	"testing"
	"time"

	"homecare-data/internal/repository"
	"homecare-data/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 2024-07-15, a Monday
var testNow = time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type testEnv struct {
	store     *repository.MemoryStore
	cache     *ViewCache
	persons   *assistedPersonService
	operators *operatorService
	diary     *diaryService
	folders   *healthFolderService
}

// newTestEnv wires every service on one memory store; a nil kv disables
// caching.
func newTestEnv(t *testing.T, kv store.KV) *testEnv {
	t.Helper()
	rs := repository.NewMemoryStore()
	logger := zap.NewNop()
	cache := NewViewCache(kv, time.Minute, logger)

	env := &testEnv{
		store:     rs,
		cache:     cache,
		persons:   NewAssistedPersonService(rs, cache, logger).(*assistedPersonService),
		operators: NewOperatorService(rs, OperatorServiceConfig{WindowDays: 30, MaxAttachmentBytes: 1024 * 1024}, cache, logger).(*operatorService),
		diary:     NewDiaryService(rs, 1024*1024, cache, logger).(*diaryService),
		folders:   NewHealthFolderService(rs, 1024*1024, cache, logger).(*healthFolderService),
	}
	env.persons.now = fixedClock
	env.operators.now = fixedClock
	env.diary.now = fixedClock
	env.folders.now = fixedClock
	return env
}

func newTestRedisKV(t *testing.T) (*miniredis.Miniredis, store.KV) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, store.NewRedisKV(client)
}

func (e *testEnv) createPerson(t *testing.T, name, surname string, extra repository.Row) int64 {
	t.Helper()
	payload := repository.Row{"nome": name, "cognome": surname}
	for k, v := range extra {
		payload[k] = v
	}
	v, err := e.persons.Create(context.Background(), payload)
	require.NoError(t, err)
	return v.ID
}

func (e *testEnv) createOperator(t *testing.T, name, surname, role string, file map[string]any) int64 {
	t.Helper()
	payload := repository.Row{"nome": name, "cognome": surname, "ruolo": role}
	if file != nil {
		payload["fascicolo"] = file
	}
	op, err := e.operators.Create(context.Background(), payload)
	require.NoError(t, err)
	return op.ID
}

// expiringFile personnel file relative to testNow: fitness expired 3 days
// ago, driving license expiring in 10 days, safety training valid, BLSD not
// required.
func expiringFile() map[string]any {
	return map[string]any{
		"idoneita_psico_fisica": map[string]any{"data_scadenza": "2024-07-12"},
		"formazione_sicurezza":  map[string]any{"data_scadenza": "2026-01-01"},
		"blsd":                  map[string]any{"stato": "Non richiesto"},
		"patente":               map[string]any{"data_scadenza": "2024-07-25", "numero": "U1234567"},
	}
}

func pdf(name string) Upload {
	return Upload{Name: name, ContentType: "application/pdf", Size: 2048}
}
