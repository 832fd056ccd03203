package app

import (
	"github.com/gin-gonic/gin"

	kbhttp "github.com/yungbote/infobase-backend/internal/http"
	httpH "github.com/yungbote/infobase-backend/internal/http/handlers"
	httpMW "github.com/yungbote/infobase-backend/internal/http/middleware"
	"github.com/yungbote/infobase-backend/internal/observability"
	"github.com/yungbote/infobase-backend/internal/platform/filestore"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, db httpH.Pinger, files filestore.FileStore) *gin.Engine {
	log.Info("Wiring router...")
	tracing := ""
	if cfg.Tracing.Enabled {
		tracing = cfg.ServiceName
	}
	return kbhttp.NewRouter(kbhttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORS:           httpMW.CORSConfig{AllowedOrigins: cfg.HTTP.CORSAllowedOrigins},
		TracingService: tracing,
		FileURLPrefix:  cfg.Files.URLPrefix,
		HealthHandler:  httpH.NewHealthHandler(db),
		FileHandler:    httpH.NewFileHandler(log, files),
	})
}
