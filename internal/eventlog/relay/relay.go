// Package relay publishes committed events to Kafka. Delivery is
// at-least-once: the cursor only advances after the broker acknowledges a
// batch, so a crash between the two republishes that batch.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"didanchor/internal/eventlog"
	"didanchor/pkg/platform/circuit"
)

// Producer is the subset of *kgo.Client the relay uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Cursor persists the sequence of the last published event.
type Cursor interface {
	Load(ctx context.Context) (uint64, error)
	Save(ctx context.Context, sequence uint64) error
}

// Relay tails an eventlog.Reader into a topic.
type Relay struct {
	reader    eventlog.Reader
	producer  Producer
	cursor    Cursor
	topic     string
	batchSize int
	breaker   *circuit.Breaker
	logger    *slog.Logger
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithCursor(c Cursor) Option {
	return func(r *Relay) {
		r.cursor = c
	}
}

// WithBreaker replaces the default broker circuit breaker. While it is open
// the relay publishes one event per request until the broker recovers.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) {
		r.breaker = b
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// New builds a relay publishing to topic. Without WithCursor it starts from
// the beginning of the log on every start.
func New(reader eventlog.Reader, producer Producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		reader:    reader,
		producer:  producer,
		cursor:    &MemoryCursor{},
		topic:     topic,
		batchSize: 100,
		breaker:   circuit.New("kafka-relay", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(2)),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record converts an event into a Kafka record keyed by event ID.
func Record(topic string, ev eventlog.Event) (*kgo.Record, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", ev.ID, err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(ev.ID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(ev.Type)},
			{Key: "sequence", Value: []byte(strconv.FormatUint(ev.Sequence, 10))},
		},
	}, nil
}

// Flush publishes everything after the cursor and returns how many events
// it published.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	after, err := r.cursor.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load relay cursor: %w", err)
	}
	published := 0
	for {
		limit := r.batchSize
		if r.breaker.IsOpen() {
			limit = 1
		}
		events, err := r.reader.ReadSince(ctx, after, limit)
		if err != nil {
			return published, fmt.Errorf("read events after %d: %w", after, err)
		}
		if len(events) == 0 {
			return published, nil
		}
		records := make([]*kgo.Record, 0, len(events))
		for _, ev := range events {
			rec, err := Record(r.topic, ev)
			if err != nil {
				return published, err
			}
			records = append(records, rec)
		}
		if err := r.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
			if _, change := r.breaker.RecordFailure(); change.Opened {
				r.logger.WarnContext(ctx, "event relay circuit opened", "topic", r.topic, "breaker", r.breaker.Name())
			}
			return published, fmt.Errorf("produce %d events: %w", len(records), err)
		}
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "event relay circuit closed", "topic", r.topic, "breaker", r.breaker.Name())
		}
		after = events[len(events)-1].Sequence
		if err := r.cursor.Save(ctx, after); err != nil {
			return published, fmt.Errorf("save relay cursor: %w", err)
		}
		published += len(events)
	}
}

// Run flushes every interval until ctx is done.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		n, err := r.Flush(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			r.logger.ErrorContext(ctx, "event relay flush failed", "topic", r.topic, "error", err)
		case n > 0:
			r.logger.InfoContext(ctx, "events relayed", "topic", r.topic, "count", n)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
