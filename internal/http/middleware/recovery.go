package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/infobase-backend/internal/http/response"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

// Recovery turns a handler panic into a 500 error envelope.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		if log != nil {
			log.Error("HTTP handler panic", "path", c.Request.URL.Path, "panic", fmt.Sprint(rec))
		}
		response.RespondError(c, http.StatusInternalServerError, "internal", fmt.Errorf("internal server error"))
	})
}
