package bus

import (
	"context"
	"strings"

	"github.com/yungbote/infobase-backend/internal/observability"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
	"github.com/yungbote/infobase-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, ev realtime.Event) error
	// StartForwarder delivers every event published on the bus to onEvent until ctx ends.
	StartForwarder(ctx context.Context, onEvent func(ev realtime.Event)) error
	Close() error
}

type Config struct {
	RedisAddr string
	Channel   string
}

// New returns a Redis bus when cfg.RedisAddr is set, otherwise an in-process one.
func New(ctx context.Context, log *logger.Logger, cfg Config) (Bus, error) {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Info("REDIS_ADDR not set; lifecycle events stay in-process")
		return NewMemoryBus(log), nil
	}
	return NewRedisBus(ctx, log, cfg)
}

type noopBus struct{}

func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, realtime.Event) error { return nil }
func (noopBus) StartForwarder(context.Context, func(realtime.Event)) error {
	return nil
}
func (noopBus) Close() error { return nil }

// Instrumented counts published events by type and outcome.
func Instrumented(b Bus, m *observability.Metrics) Bus {
	if b == nil || m == nil {
		return b
	}
	return &instrumentedBus{Bus: b, metrics: m}
}

type instrumentedBus struct {
	Bus
	metrics *observability.Metrics
}

func (b *instrumentedBus) Publish(ctx context.Context, ev realtime.Event) error {
	err := b.Bus.Publish(ctx, ev)
	b.metrics.IncEventPublished(string(ev.Type), err == nil)
	return err
}
