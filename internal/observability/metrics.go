package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/infobase-backend/internal/platform/envutil"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *GaugeVec

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	storedBytes     *CounterVec
	eventsPublished *CounterVec

	dbPool  *GaugeVec
	redisUp *GaugeVec

	collectors []collector
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init creates the process-wide metrics once.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = NewMetrics()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

// NewMetrics builds an unregistered set of collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		apiRequests: NewCounterVec("kb_http_requests_total", "HTTP requests served.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("kb_http_request_duration_seconds", "HTTP request latency.", []string{"method", "route", "status"}, nil),
		apiInflight: NewGaugeVec("kb_http_inflight_requests", "HTTP requests in flight.", nil),

		aggregateOps:       NewCounterVec("kb_aggregate_operations_total", "Aggregate write operations.", []string{"op", "status"}),
		aggregateLatency:   NewHistogramVec("kb_aggregate_operation_duration_seconds", "Aggregate write latency.", []string{"op", "status"}, nil),
		aggregateConflicts: NewCounterVec("kb_aggregate_conflicts_total", "Aggregate writes rejected as conflicts.", []string{"op"}),
		aggregateRetries:   NewCounterVec("kb_aggregate_retries_total", "Aggregate writes failed with a retryable error.", []string{"op"}),

		storedBytes:     NewCounterVec("kb_file_store_bytes_total", "Bytes written to the file store.", []string{"backend"}),
		eventsPublished: NewCounterVec("kb_events_published_total", "Lifecycle events published.", []string{"type", "status"}),

		dbPool:  NewGaugeVec("kb_db_pool", "database/sql pool statistics.", []string{"stat"}),
		redisUp: NewGaugeVec("kb_redis_up", "1 when the last Redis ping succeeded.", nil),
	}
	m.collectors = []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.storedBytes, m.eventsPublished,
		m.dbPool, m.redisUp,
	}
	return m
}

func scrapeInterval() time.Duration {
	return envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 15*time.Second)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range m.collectors {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(op, status)
	m.aggregateLatency.Observe(dur.Seconds(), op, status)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(op)
}

func (m *Metrics) AddStoredBytes(backend string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.storedBytes.Add(float64(n), backend)
}

func (m *Metrics) IncEventPublished(eventType string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.eventsPublished.Inc(eventType, status)
}

// AggregateOperationCount is the number of recorded operations for op/status.
func (m *Metrics) AggregateOperationCount(op, status string) float64 {
	if m == nil {
		return 0
	}
	return m.aggregateOps.Value(op, status)
}

// StartDBCollector samples the connection pool until ctx is done.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleDBPool(log, db)
			}
		}
	}()
}

func (m *Metrics) sampleDBPool(log *logger.Logger, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	stats := sqlDB.Stats()
	m.dbPool.Set(float64(stats.OpenConnections), "open_connections")
	m.dbPool.Set(float64(stats.InUse), "in_use")
	m.dbPool.Set(float64(stats.Idle), "idle")
	m.dbPool.Set(float64(stats.WaitCount), "wait_count")
	m.dbPool.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
	m.dbPool.Set(float64(stats.MaxOpenConnections), "max_open_connections")
}

// StartRedisCollector pings addr periodically and records reachability.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(scrapeInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
			}
		}
	}()
}

// StatusLabel renders an HTTP status for the status label.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
