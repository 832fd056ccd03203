package app

import (
	"gorm.io/gorm"

	dataagg "github.com/yungbote/infobase-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/observability"
	"github.com/yungbote/infobase-backend/internal/platform/filestore"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
	"github.com/yungbote/infobase-backend/internal/realtime/bus"
	"github.com/yungbote/infobase-backend/internal/services"
)

type Aggregates struct {
	Users     domainagg.UserAggregate
	Projects  domainagg.ProjectAggregate
	InfoBases domainagg.InfoBaseAggregate
	Chunks    domainagg.ChunkAggregate
}

type Services struct {
	Projects  services.ProjectService
	InfoBases services.InfoBaseService
	Chunks    services.ChunkService
}

func wireAggregates(db *gorm.DB, log *logger.Logger, metrics *observability.Metrics, r Repos) Aggregates {
	log.Info("Wiring aggregates...")
	base := dataagg.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: dataagg.NewObservabilityHooks(metrics, log),
	}
	return Aggregates{
		Users: dataagg.NewUserAggregate(dataagg.UserAggregateDeps{
			Base:      base,
			Users:     r.Users,
			InfoBases: r.InfoBases,
			Chunks:    r.Chunks,
		}),
		Projects: dataagg.NewProjectAggregate(dataagg.ProjectAggregateDeps{
			Base:      base,
			Projects:  r.Projects,
			InfoBases: r.InfoBases,
			Chunks:    r.Chunks,
		}),
		InfoBases: dataagg.NewInfoBaseAggregate(dataagg.InfoBaseAggregateDeps{
			Base:      base,
			InfoBases: r.InfoBases,
			Chunks:    r.Chunks,
		}),
		Chunks: dataagg.NewChunkAggregate(dataagg.ChunkAggregateDeps{
			Base:   base,
			Chunks: r.Chunks,
		}),
	}
}

func wireServices(
	log *logger.Logger,
	cfg Config,
	metrics *observability.Metrics,
	r Repos,
	a Aggregates,
	files filestore.FileStore,
	events bus.Bus,
) Services {
	log.Info("Wiring services...")
	return Services{
		Projects: services.NewProjectService(log, r.Projects, a.Projects, files, events),
		InfoBases: services.NewInfoBaseService(
			log,
			services.InfoBaseServiceConfig{MaxUploadBytes: cfg.Files.MaxUploadBytes},
			r.InfoBases,
			a.InfoBases,
			files,
			events,
			metrics,
		),
		Chunks: services.NewChunkService(log, r.InfoBases, r.Chunks, a.Chunks, events),
	}
}
