package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/parceltrack/parceltrack/internal/metrics"
)

// PublishTimeout is the max time a single async publish may take.
const PublishTimeout = 500 * time.Millisecond

// Sink delivers encoded events to a broker.
type Sink interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Publisher sends events to a sink without blocking request handling.
type Publisher struct {
	sink    Sink
	logger  *slog.Logger
	metrics metrics.Recorder
	wg      sync.WaitGroup
}

// NewPublisher creates a new event publisher.
func NewPublisher(sink Sink, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if sink == nil {
		sink = NoopSink{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		sink:    sink,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish sends the event synchronously.
func (p *Publisher) Publish(ctx context.Context, evt Event) error {
	if err := p.sink.Publish(ctx, evt); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// PublishAsync publishes without blocking the caller.
// Errors are logged and counted, never returned.
func (p *Publisher) PublishAsync(evt Event) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		if err := p.Publish(ctx, evt); err != nil {
			p.logger.Warn("failed to publish event",
				"event_id", evt.ID,
				"type", evt.Type,
				"parcel_id", evt.ParcelID,
				"error", err,
			)
			p.metrics.IncEventPublished(metrics.StatusDropped)
			return
		}

		p.logger.Debug("event published",
			"event_id", evt.ID,
			"type", evt.Type,
		)
		p.metrics.IncEventPublished(metrics.StatusSuccess)
	}()
}

// Close waits for in-flight publishes, then closes the sink.
func (p *Publisher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn("closing event sink with publishes in flight")
	}

	return p.sink.Close()
}

// NoopSink discards events.
type NoopSink struct{}

// Publish discards the event.
func (NoopSink) Publish(context.Context, Event) error { return nil }

// Close is a no-op.
func (NoopSink) Close() error { return nil }
