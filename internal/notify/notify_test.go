package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func sample() Notification {
	return Notification{
		Kind:    "document_expiry",
		Subject: "Documenti in scadenza",
		Count:   2,
		SentAt:  time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC),
		Payload: []map[string]any{{"operator": "Anna Verdi", "document": "blsd"}},
	}
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.Notify(context.Background(), sample()))
	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "document_expiry", fields["kind"])
	assert.Equal(t, int64(2), fields["count"])
}

func TestStreamNotifier(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := NewStreamNotifier(client, "homecare:alerts", 1000)
	require.NoError(t, n.Notify(context.Background(), sample()))

	msgs, err := client.XRange(context.Background(), "homecare:alerts", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var got Notification
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &got))
	assert.Equal(t, "document_expiry", got.Kind)
	assert.Equal(t, 2, got.Count)
	assert.NotEmpty(t, msgs[0].Values["timestamp"])
}

type fakePublisher struct {
	topic   string
	qos     byte
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(topic string, qos byte, _ bool, payload []byte) error {
	f.topic, f.qos, f.payload = topic, qos, payload
	return f.err
}

func TestMQTTNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := NewMQTTNotifier(pub, "homecare/alerts", 1)

	require.NoError(t, n.Notify(context.Background(), sample()))
	assert.Equal(t, "homecare/alerts/document_expiry", pub.topic)
	assert.Equal(t, byte(1), pub.qos)

	var got Notification
	require.NoError(t, json.Unmarshal(pub.payload, &got))
	assert.Equal(t, "Documenti in scadenza", got.Subject)

	pub.err = errors.New("broker down")
	assert.Error(t, n.Notify(context.Background(), sample()))
}
