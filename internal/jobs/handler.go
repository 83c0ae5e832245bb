package jobs

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/respond"
	"jobtracker-backend/internal/uploads"
)

const defaultMaxUploadBytes = 10 << 20 // 10MB

var formFields = []string{"title", "company", "location", "link", "status", "notes", "dateApplied"}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.list)
	rg.POST("/jobs", h.create)
	rg.GET("/jobs/:id", h.get)
	rg.PUT("/jobs/:id", h.update)
	rg.DELETE("/jobs/:id", h.delete)
	rg.GET("/jobs/:id/attachments/:kind/text", h.attachmentText)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list jobs")
		return
	}
	respond.OK(c, toResponses(list))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	respond.SetJob(c, id)
	job, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "failed to load job")
		return
	}
	respond.OK(c, ToResponse(job))
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	var in Input
	var files Files
	if isJSON(c) {
		var req InputRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
		in = req.Input()
	} else {
		form, err := c.MultipartForm()
		if err != nil {
			writeBindError(c, err)
			return
		}
		patch := patchFromForm(form)
		in = Input{
			Title:       deref(patch.Title),
			Company:     deref(patch.Company),
			Location:    deref(patch.Location),
			Link:        deref(patch.Link),
			Status:      deref(patch.Status),
			Notes:       deref(patch.Notes),
			DateApplied: deref(patch.DateApplied),
		}
		var closeFiles func()
		files, closeFiles, err = filesFromForm(form)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
			return
		}
		defer closeFiles()
		respond.SetAttachments(c, countFiles(files))
	}

	job, err := h.Svc.Create(c.Request.Context(), in, files)
	if err != nil {
		writeError(c, err, "failed to create job")
		return
	}
	respond.SetJob(c, job.ID)
	respond.Created(c, ToResponse(job))
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	respond.SetJob(c, id)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	var patch Patch
	var files Files
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			writeBindError(c, err)
			return
		}
		patch = patchFromForm(form)
		var closeFiles func()
		files, closeFiles, err = filesFromForm(form)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
			return
		}
		defer closeFiles()
		respond.SetAttachments(c, countFiles(files))
	} else {
		var req PatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}
		patch = req.Patch()
	}

	job, err := h.Svc.Update(c.Request.Context(), id, patch, files)
	if err != nil {
		writeError(c, err, "failed to update job")
		return
	}
	respond.OK(c, ToResponse(job))
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	respond.SetJob(c, id)
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, "failed to delete job")
		return
	}
	respond.NoContent(c)
}

func (h *Handler) attachmentText(c *gin.Context) {
	id := c.Param("id")
	respond.SetJob(c, id)
	kind, err := ParseAttachmentKind(c.Param("kind"))
	if err != nil {
		writeError(c, err, "invalid attachment")
		return
	}
	text, err := h.Svc.AttachmentText(c.Request.Context(), id, kind)
	if err != nil {
		writeError(c, err, "failed to extract attachment text")
		return
	}
	respond.OK(c, gin.H{"text": text})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ErrUpload):
		respond.Error(c, http.StatusInternalServerError, "upload_error", fallback, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "persistence_error", fallback, nil)
	}
}

func writeBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
		return
	}
	respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
}

func isJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "application/json")
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func patchFromForm(form *multipart.Form) Patch {
	var p Patch
	targets := map[string]**string{
		"title":       &p.Title,
		"company":     &p.Company,
		"location":    &p.Location,
		"link":        &p.Link,
		"status":      &p.Status,
		"notes":       &p.Notes,
		"dateApplied": &p.DateApplied,
	}
	for _, name := range formFields {
		values, ok := form.Value[name]
		if !ok || len(values) == 0 {
			continue
		}
		v := values[0]
		*targets[name] = &v
	}
	return p
}

func filesFromForm(form *multipart.Form) (Files, func(), error) {
	var files Files
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	slots := map[AttachmentKind]**uploads.Part{
		AttachmentResume:      &files.Resume,
		AttachmentCoverLetter: &files.CoverLetter,
	}
	for kind, slot := range slots {
		headers := form.File[string(kind)]
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return Files{}, func() {}, err
		}
		opened = append(opened, f)
		*slot = &uploads.Part{Field: string(kind), FileName: fh.Filename, Body: f}
	}
	return files, closeAll, nil
}

func countFiles(files Files) int {
	n := 0
	if files.Resume != nil {
		n++
	}
	if files.CoverLetter != nil {
		n++
	}
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
