package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/infobase-backend/internal/observability"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type observabilityHooks struct {
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewObservabilityHooks reports aggregate writes to metrics and logs failures.
// Either argument may be nil.
func NewObservabilityHooks(metrics *observability.Metrics, log *logger.Logger) Hooks {
	if metrics == nil && log == nil {
		return noopHooks{}
	}
	if log != nil {
		log = log.With("component", "AggregateHooks")
	}
	return &observabilityHooks{metrics: metrics, log: log}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	name, status = strings.TrimSpace(name), strings.TrimSpace(status)
	h.metrics.ObserveAggregateOperation(name, status, dur)
	if h.log != nil && status != "success" {
		h.log.Warn("aggregate write failed", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	}
}

func (h *observabilityHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(strings.TrimSpace(name))
}

func (h *observabilityHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(strings.TrimSpace(name))
}
