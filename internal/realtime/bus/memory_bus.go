package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/infobase-backend/internal/platform/logger"
	"github.com/yungbote/infobase-backend/internal/realtime"
)

var errNilCallback = errors.New("onEvent callback required")

// memoryBus fans events out to in-process forwarders synchronously.
type memoryBus struct {
	log *logger.Logger

	mu     sync.RWMutex
	nextID int
	subs   map[int]func(realtime.Event)
	closed bool
}

func NewMemoryBus(log *logger.Logger) Bus {
	return &memoryBus{
		log:  log.With("service", "MemoryEventBus"),
		subs: map[int]func(realtime.Event){},
	}
}

func (b *memoryBus) Publish(ctx context.Context, ev realtime.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, fn := range b.subs {
		fn(ev)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onEvent func(ev realtime.Event)) error {
	if onEvent == nil {
		return errNilCallback
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = onEvent
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = map[int]func(realtime.Event){}
	return nil
}
