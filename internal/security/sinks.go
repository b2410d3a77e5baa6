package security

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LogSink writes audit events to the structured log. This mirrors the
// platform's original behavior of logging security events rather than
// storing them.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink builds a log-backed sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("security")}
}

// Emit logs the event.
func (s *LogSink) Emit(_ context.Context, name string, details map[string]any) {
	event := NewEvent(name, details)
	s.logger.Info("security event",
		zap.String("event_id", event.ID),
		zap.String("event", event.Name),
		zap.Any("details", event.Details),
		zap.Time("emitted_at", event.Timestamp),
	)
}

// StreamSink publishes audit events to a Redis stream so an external
// consumer can own durability. Publish failures are logged and dropped;
// the request path never fails on the sink.
type StreamSink struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewStreamSink builds a Redis-stream-backed sink.
func NewStreamSink(client *redis.Client, stream string, logger *zap.Logger) *StreamSink {
	if stream == "" {
		stream = "security-events"
	}
	return &StreamSink{client: client, stream: stream, logger: logger}
}

// Emit appends the event to the stream.
func (s *StreamSink) Emit(ctx context.Context, name string, details map[string]any) {
	event := NewEvent(name, details)

	payload, err := json.Marshal(event.Details)
	if err != nil {
		s.logger.Warn("security event details not serializable", zap.String("event", name), zap.Error(err))
		payload = []byte("{}")
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":      event.ID,
			"event":   event.Name,
			"details": string(payload),
			"ts":      event.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}).Err()
	if err != nil {
		s.logger.Warn("security event publish failed", zap.String("event", name), zap.Error(err))
	}
}

// Fanout emits to every configured sink in order.
type Fanout []Sink

// Emit forwards the event to each sink.
func (f Fanout) Emit(ctx context.Context, name string, details map[string]any) {
	for _, sink := range f {
		sink.Emit(ctx, name, details)
	}
}
