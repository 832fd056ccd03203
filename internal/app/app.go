package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	kbdb "github.com/yungbote/infobase-backend/internal/data/db"
	kbhttp "github.com/yungbote/infobase-backend/internal/http"
	"github.com/yungbote/infobase-backend/internal/observability"
	"github.com/yungbote/infobase-backend/internal/platform/filestore"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
	"github.com/yungbote/infobase-backend/internal/realtime"
	"github.com/yungbote/infobase-backend/internal/realtime/bus"
)

type App struct {
	Log        *logger.Logger
	Cfg        Config
	DB         *kbdb.Service
	Files      filestore.FileStore
	Events     bus.Bus
	Metrics    *observability.Metrics
	Repos      Repos
	Aggregates Aggregates
	Services   Services
	Router     *gin.Engine
	Server     *kbhttp.Server

	otelShutdown func(context.Context) error
}

// New loads configuration from the environment and builds the app.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Source != "" {
		log.Info("Config file loaded", "path", cfg.Source)
	}
	a, err := NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

// NewWithConfig builds every component from cfg. On error, whatever was
// already opened is closed again.
func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (_ *App, err error) {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	a := &App{Log: log, Cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.otelShutdown, err = observability.InitTracing(ctx, log, cfg.TracingConfig())
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	if cfg.MetricsEnabled {
		a.Metrics = observability.Init(log)
	}

	a.DB, err = kbdb.NewService(log, cfg.DBConfig())
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.Database.MigrateOnStart {
		if err = a.DB.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	fsCfg, err := cfg.FileStoreConfig()
	if err != nil {
		return nil, fmt.Errorf("file store config: %w", err)
	}
	a.Files, err = filestore.New(ctx, log, fsCfg)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}

	events, err := bus.New(ctx, log, bus.Config{RedisAddr: cfg.Redis.Addr, Channel: cfg.Redis.Channel})
	if err != nil {
		return nil, fmt.Errorf("init event bus: %w", err)
	}
	a.Events = bus.Instrumented(events, a.Metrics)

	theDB := a.DB.DB()
	a.Repos = wireRepos(theDB, log)
	a.Aggregates = wireAggregates(theDB, log, a.Metrics, a.Repos)
	a.Services = wireServices(log, cfg, a.Metrics, a.Repos, a.Aggregates, a.Files, a.Events)
	a.Router = wireRouter(log, cfg, a.Metrics, a.DB, a.Files)
	a.Server = kbhttp.NewServer(log, cfg.Addr(), a.Router)
	return a, nil
}

// Run serves HTTP and runs the background collectors until ctx is cancelled
// or the server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartDBCollector(gctx, a.Log, a.DB.DB())
	a.Metrics.StartRedisCollector(gctx, a.Log, a.Cfg.Redis.Addr)

	if err := a.Events.StartForwarder(gctx, a.logEvent); err != nil {
		a.Log.Warn("Event forwarder not started", "error", err)
	}

	g.Go(func() error {
		return a.Server.Run(gctx, a.Cfg.ShutdownTimeout())
	})
	return g.Wait()
}

func (a *App) logEvent(ev realtime.Event) {
	a.Log.Debug("Lifecycle event", "type", string(ev.Type), "channel", ev.Channel)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			a.Log.Warn("Event bus close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	a.Log.Sync()
}
