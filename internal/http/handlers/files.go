package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/infobase-backend/internal/domain/aggregates"
	"github.com/yungbote/infobase-backend/internal/http/response"
	"github.com/yungbote/infobase-backend/internal/platform/filestore"
	"github.com/yungbote/infobase-backend/internal/platform/logger"
)

// FileHandler serves stored uploads and their derived artifacts read-only.
type FileHandler struct {
	log   *logger.Logger
	store filestore.FileStore
}

func NewFileHandler(log *logger.Logger, store filestore.FileStore) *FileHandler {
	return &FileHandler{log: log.With("handler", "FileHandler"), store: store}
}

const serveOp = "Files.Serve"

// Serve handles GET and HEAD <prefix>/*filepath.
func (h *FileHandler) Serve(c *gin.Context) {
	key, err := filestore.CleanKey(c.Param("filepath"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_path", err)
		return
	}

	obj, err := h.store.Open(c.Request.Context(), key)
	switch {
	case errors.Is(err, filestore.ErrInvalidPath):
		response.RespondError(c, http.StatusBadRequest, "invalid_path", err)
		return
	case errors.Is(err, filestore.ErrNotFound):
		response.RespondDomainError(c, domainagg.NewError(domainagg.CodeNotFound, serveOp, "file "+key+" does not exist", err))
		return
	case err != nil:
		h.log.Error("Open stored file failed", "key", key, "error", err)
		response.RespondDomainError(c, domainagg.NewError(domainagg.CodeInternal, serveOp, "could not read file", nil))
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		c.Header("Content-Type", obj.ContentType)
	}
	if rs, ok := obj.Body.(io.ReadSeeker); ok {
		// Handles Range, If-Modified-Since and HEAD.
		http.ServeContent(c.Writer, c.Request, path.Base(key), obj.ModTime, rs)
		return
	}

	if !obj.ModTime.IsZero() {
		c.Header("Last-Modified", obj.ModTime.UTC().Format(http.TimeFormat))
	}
	if obj.Size >= 0 {
		c.Header("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	c.Status(http.StatusOK)
	if c.Request.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(c.Writer, obj.Body); err != nil {
		h.log.Warn("Stream stored file interrupted", "key", key, "error", err)
	}
}
