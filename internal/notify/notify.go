// Package notify delivers operational alerts (expiring personnel documents)
// to whoever watches them: the service log, a Redis stream or an MQTT topic.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rediscommon "homecare-data/common/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Notification one alert. Payload must be JSON-encodable.
type Notification struct {
	Kind    string    `json:"kind"`
	Subject string    `json:"subject"`
	Count   int       `json:"count"`
	SentAt  time.Time `json:"sent_at"`
	Payload any       `json:"payload"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the service log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}
	l.logger.Warn("notification",
		zap.String("kind", n.Kind),
		zap.String("subject", n.Subject),
		zap.Int("count", n.Count),
		zap.Time("sent_at", n.SentAt),
		zap.ByteString("payload", payload),
	)
	return nil
}

// StreamNotifier appends notifications to a Redis stream.
type StreamNotifier struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewStreamNotifier(client *redis.Client, stream string, maxLen int64) *StreamNotifier {
	return &StreamNotifier{client: client, stream: stream, maxLen: maxLen}
}

func (s *StreamNotifier) Notify(ctx context.Context, n Notification) error {
	if _, err := rediscommon.PublishJSONToStream(ctx, s.client, s.stream, s.maxLen, n); err != nil {
		return fmt.Errorf("failed to publish notification to stream %s: %w", s.stream, err)
	}
	return nil
}

// Publisher is satisfied by common/mqtt.Client.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier publishes notifications as JSON on topic/<kind>.
type MQTTNotifier struct {
	pub   Publisher
	topic string
	qos   byte
}

func NewMQTTNotifier(pub Publisher, topic string, qos byte) *MQTTNotifier {
	return &MQTTNotifier{pub: pub, topic: topic, qos: qos}
}

func (m *MQTTNotifier) Notify(_ context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return m.pub.Publish(m.topic+"/"+n.Kind, m.qos, false, payload)
}
