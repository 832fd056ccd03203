package bus

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/infobase-backend/internal/observability"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
	"github.com/yungbote/infobase-backend/internal/realtime"
)

func TestMemoryBusDeliversUntilCancel(t *testing.T) {
	b := NewMemoryBus(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var got []realtime.EventType
	if err := b.StartForwarder(ctx, func(ev realtime.Event) {
		mu.Lock()
		got = append(got, ev.Type)
		mu.Unlock()
	}); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}

	pub := context.Background()
	_ = b.Publish(pub, realtime.NewEvent(realtime.EventInfoBaseUploaded, 1, nil))
	_ = b.Publish(pub, realtime.NewEvent(realtime.EventInfoBaseIndexed, 1, nil))

	mu.Lock()
	if len(got) != 2 || got[0] != realtime.EventInfoBaseUploaded || got[1] != realtime.EventInfoBaseIndexed {
		t.Fatalf("unexpected delivery order: %v", got)
	}
	mu.Unlock()

	cancel()
	mb := b.(*memoryBus)
	deadline := time.Now().Add(time.Second)
	for {
		mb.mu.RLock()
		subs := len(mb.subs)
		mb.mu.RUnlock()
		if subs == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("forwarder not removed after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
	_ = b.Publish(pub, realtime.NewEvent(realtime.EventProjectDeleted, 1, nil))
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("forwarder still receiving after cancel: %v", got)
	}
}

func TestMemoryBusRejectsNilCallbackAndCanceledPublish(t *testing.T) {
	b := NewMemoryBus(logger.NewNop())
	if err := b.StartForwarder(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil callback")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Publish(ctx, realtime.Event{Type: realtime.EventInfoBaseUploaded}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type failingBus struct{ noopBus }

func (failingBus) Publish(context.Context, realtime.Event) error { return errors.New("down") }

func TestInstrumentedCountsOutcomes(t *testing.T) {
	m := observability.NewMetrics()
	ok := Instrumented(NewNoopBus(), m)
	bad := Instrumented(failingBus{}, m)

	ctx := context.Background()
	_ = ok.Publish(ctx, realtime.Event{Type: realtime.EventInfoBaseUploaded})
	_ = ok.Publish(ctx, realtime.Event{Type: realtime.EventInfoBaseUploaded})
	if err := bad.Publish(ctx, realtime.Event{Type: realtime.EventProjectDeleted}); err == nil {
		t.Fatalf("expected error to pass through")
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`kb_events_published_total{type="infobase.uploaded",status="ok"} 2`,
		`kb_events_published_total{type="project.deleted",status="error"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNewWithoutRedisUsesMemoryBus(t *testing.T) {
	b, err := New(context.Background(), logger.NewNop(), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := b.(*memoryBus); !ok {
		t.Fatalf("expected memory bus, got %T", b)
	}
}

func TestProjectChannel(t *testing.T) {
	ev := realtime.NewEvent(realtime.EventProjectDeleted, 42, map[string]any{"project_id": 42})
	if ev.Channel != "project:42" || ev.At.IsZero() {
		t.Fatalf("unexpected event: %+v", ev)
	}
}
