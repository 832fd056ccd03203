package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type CORSConfig struct {
	// AllowedOrigins lists exact origins. "*" (or an empty list) accepts any
	// origin, echoed back so credentials keep working.
	AllowedOrigins []string
}

func (c CORSConfig) allowAny() bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, o := range c.AllowedOrigins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

func CORS(cfg CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", headerRequestID, headerTraceID, "Range"},
		ExposeHeaders:    []string{headerRequestID, headerTraceID, "Content-Length", "Content-Range"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.allowAny() {
		cc.AllowOriginFunc = func(string) bool { return true }
	} else {
		for _, o := range cfg.AllowedOrigins {
			if o = strings.TrimSpace(o); o != "" {
				cc.AllowOrigins = append(cc.AllowOrigins, o)
			}
		}
	}
	return cors.New(cc)
}
