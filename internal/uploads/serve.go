package uploads

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/respond"
	"jobtracker-backend/internal/shared/storage/object"
)

const presignTTL = 5 * time.Minute

// RegisterRoutes mounts the download route for stored attachments.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET(h.Mount+"/*key", h.serve)
	r.HEAD(h.Mount+"/*key", h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	key, err := h.KeyFromReference(h.Mount + c.Param("key"))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		return
	}

	if p, ok := h.Store.(object.Presigner); ok {
		url, err := p.PresignGet(c.Request.Context(), key, presignTTL)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to sign download", nil)
			return
		}
		c.Redirect(http.StatusFound, url)
		return
	}

	rc, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to read file", nil)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control": "private, max-age=300",
	})
}
