package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// StreamKey is the Redis stream for parcel events.
	StreamKey = "stream:parcel_events"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000
)

// RedisStreamSink appends events to a Redis stream.
type RedisStreamSink struct {
	client *redis.Client
	stream string
}

// NewRedisStreamSink creates a sink on the given client.
// The client is owned by the caller and is not closed by the sink.
func NewRedisStreamSink(client *redis.Client) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: StreamKey}
}

// Publish adds the event to the stream.
func (s *RedisStreamSink) Publish(ctx context.Context, evt Event) error {
	data, err := evt.Encode()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"type":      string(evt.Type),
			"parcel_id": evt.ParcelID,
			"payload":   string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}

	return nil
}

// Close is a no-op; the shared client is closed with the cache.
func (s *RedisStreamSink) Close() error {
	return nil
}
