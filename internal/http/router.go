package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/infobase-backend/internal/http/handlers"
	httpMW "github.com/yungbote/infobase-backend/internal/http/middleware"
	"github.com/yungbote/infobase-backend/internal/observability"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	CORS    httpMW.CORSConfig

	// TracingService enables otelgin spans under this service name when set.
	TracingService string
	// FileURLPrefix is where stored files are mounted, e.g. "/file".
	FileURLPrefix string

	HealthHandler *httpH.HealthHandler
	FileHandler   *httpH.FileHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORS))
	r.Use(httpMW.Recovery(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", func(c *gin.Context) { cfg.Metrics.WriteHTTP(c.Writer, c.Request) })
	}

	// Stored files
	if cfg.FileHandler != nil {
		prefix := FilePrefix(cfg.FileURLPrefix)
		r.GET(prefix+"/*filepath", cfg.FileHandler.Serve)
		r.HEAD(prefix+"/*filepath", cfg.FileHandler.Serve)
	}

	r.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}

// FilePrefix normalizes a mount prefix to "/name" form.
func FilePrefix(raw string) string {
	p := "/" + strings.Trim(strings.TrimSpace(raw), "/")
	if p == "/" {
		return "/file"
	}
	return p
}
