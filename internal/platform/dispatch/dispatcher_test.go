package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/league-engine/internal/platform/logging"
)

type recordingSink struct {
	mu       sync.Mutex
	messages []Message
	block    chan struct{}
	err      error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(ctx context.Context, msg Message) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	return s.err
}

func (s *recordingSink) snapshot() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

func TestDispatcher_PublishDeliversToEverySink(t *testing.T) {
	t.Parallel()

	first := &recordingSink{}
	second := &recordingSink{err: errors.New("unreachable")}
	d, err := New(Config{PoolSize: 2}, logging.NewNop(), nil, first, second)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.Publish(ctx, TopicMatchFinalized, "match-7", map[string]any{"match_id": 7})
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), time.Second)
	defer closeCancel()
	if err := d.Close(closeCtx); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	for _, sink := range []*recordingSink{first, second} {
		got := sink.snapshot()
		if len(got) != 1 {
			t.Fatalf("expected 1 delivery, got %d", len(got))
		}
		if got[0].Topic != TopicMatchFinalized || got[0].Key != "match-7" || got[0].ID == "" {
			t.Fatalf("unexpected message: %+v", got[0])
		}
	}
}

func TestDispatcher_PublishDoesNotBlockWhenSaturated(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{block: make(chan struct{})}
	d, err := New(Config{PoolSize: 1}, logging.NewNop(), nil, sink)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			d.Publish(context.Background(), TopicSuspensionCreated, "p1", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Publish blocked on a saturated pool")
	}

	close(sink.block)
	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Close(closeCtx); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if got := len(sink.snapshot()); got < 1 || got > 5 {
		t.Fatalf("unexpected delivery count %d", got)
	}
}

func TestDispatcher_NilIsNoop(t *testing.T) {
	t.Parallel()

	var d *Dispatcher
	d.Publish(context.Background(), TopicMatchFinalized, "k", nil)
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
