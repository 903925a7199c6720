package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/league-engine/internal/platform/id"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/metrics"
)

const (
	TopicMatchFinalized    = "match.finalized"
	TopicSuspensionCreated = "suspension.created"
	TopicSuspensionServed  = "suspension.served"
	TopicFixturesGenerated = "fixtures.generated"
	TopicKnockoutGenerated = "knockout.generated"
)

const (
	defaultDeliveryTimeout  = 10 * time.Second
	defaultDispatchPoolSize = 8
)

// Message is one outbound notification.
type Message struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Key         string    `json:"key"`
	Payload     any       `json:"payload"`
	PublishedAt time.Time `json:"published_at"`
}

// Sink delivers messages to one destination.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, msg Message) error
}

type Config struct {
	PoolSize        int
	DeliveryTimeout time.Duration
}

// Dispatcher fans messages out to its sinks on a bounded worker pool. Publish
// never waits for delivery; when the pool is saturated the message is dropped
// and counted.
type Dispatcher struct {
	pool     *ants.Pool
	sinks    []Sink
	logger   *logging.Logger
	metrics  *metrics.Recorder
	ids      id.Generator
	timeout  time.Duration
	now      func() time.Time
	inflight sync.WaitGroup
}

func New(cfg Config, logger *logging.Logger, recorder *metrics.Recorder, sinks ...Sink) (*Dispatcher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultDispatchPoolSize
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = defaultDeliveryTimeout
	}

	pool, err := ants.NewPool(cfg.PoolSize,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			logger.Error("dispatch worker panic", "panic", fmt.Sprint(p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create dispatch pool: %w", err)
	}

	return &Dispatcher{
		pool:    pool,
		sinks:   sinks,
		logger:  logger.Named("dispatch"),
		metrics: recorder,
		ids:     id.NewUUIDGenerator(),
		timeout: cfg.DeliveryTimeout,
		now:     time.Now,
	}, nil
}

// Publish schedules delivery and returns immediately. The caller's
// cancellation does not reach the sinks.
func (d *Dispatcher) Publish(ctx context.Context, topic, key string, payload any) {
	if d == nil || len(d.sinks) == 0 {
		return
	}

	msg := Message{
		ID:          id.MustNewID(d.ids),
		Topic:       topic,
		Key:         key,
		Payload:     payload,
		PublishedAt: d.now().UTC(),
	}
	detached := context.WithoutCancel(ctx)

	for _, sink := range d.sinks {
		sink := sink
		d.inflight.Add(1)
		err := d.pool.Submit(func() {
			defer d.inflight.Done()
			d.deliver(detached, sink, msg)
		})
		if err != nil {
			d.inflight.Done()
			d.metrics.DispatchDropped()
			if errors.Is(err, ants.ErrPoolOverload) {
				d.logger.WarnContext(ctx, "dispatch pool saturated, message dropped", "topic", topic, "sink", sink.Name(), "message_id", msg.ID)
				continue
			}
			d.logger.WarnContext(ctx, "dispatch submit failed", "topic", topic, "sink", sink.Name(), "error", err)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, msg Message) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	if err := sink.Deliver(ctx, msg); err != nil {
		d.logger.WarnContext(ctx, "dispatch delivery failed",
			"topic", msg.Topic,
			"sink", sink.Name(),
			"message_id", msg.ID,
			"duration", time.Since(start),
			"error", err,
		)
		return
	}
	d.logger.DebugContext(ctx, "dispatch delivered", "topic", msg.Topic, "sink", sink.Name(), "message_id", msg.ID)
}

// Close waits for in-flight deliveries until ctx ends, then releases the pool.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("dispatch drain: %w", ctx.Err())
	}
	d.pool.Release()
	return err
}

// LogSink writes every message to the structured log.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger.Named("events")}
}

func (s *LogSink) Name() string {
	return "log"
}

func (s *LogSink) Deliver(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "engine event",
		"topic", msg.Topic,
		"key", msg.Key,
		"message_id", msg.ID,
		"payload", msg.Payload,
	)
	return nil
}
