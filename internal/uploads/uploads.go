package uploads

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"jobtracker-backend/internal/extract"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/storage/object"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/shared/util"
)

var (
	// ErrUpload wraps failures writing attachment bytes to the content store.
	ErrUpload = errors.New("upload failed")

	// ErrUnsupportedType is returned in strict mode for non-document attachments.
	ErrUnsupportedType = errors.New("attachment must be a pdf, doc or docx file")

	// ErrInvalidReference is returned for references outside the public mount.
	ErrInvalidReference = errors.New("invalid attachment reference")
)

const fallbackFileName = "attachment"

// Part is one file field of a multipart submission.
type Part struct {
	Field    string
	FileName string
	Body     io.Reader
}

// Stored describes an attachment written to the content store.
type Stored struct {
	Field     string
	Key       string
	Reference string
	SizeBytes int64
	MimeType  string
}

// Handler writes attachments to an object store and maps storage keys onto public references.
type Handler struct {
	Store  object.ObjectStore
	Mount  string
	Strict bool

	now func() time.Time
}

// NewHandler constructs a Handler serving references below mount (e.g. "/uploads").
func NewHandler(store object.ObjectStore, mount string, strict bool) *Handler {
	return &Handler{
		Store:  store,
		Mount:  normalizeMount(mount),
		Strict: strict,
		now:    time.Now,
	}
}

// Save stores one part under a unique, timestamp-prefixed name and returns its reference.
func (h *Handler) Save(ctx context.Context, part Part) (Stored, error) {
	data, err := io.ReadAll(part.Body)
	if err != nil {
		return Stored{}, fmt.Errorf("%w: read %s: %w", ErrUpload, part.Field, err)
	}

	mimeType := extract.DetectMimeType(data, part.FileName)
	if !extract.IsDocument(mimeType) {
		if h.Strict {
			return Stored{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, part.Field, mimeType)
		}
		telemetry.Warn("upload.unexpected_type", map[string]any{
			"field":     part.Field,
			"file_name": part.FileName,
			"mime_type": mimeType,
		})
	}

	key := h.newKey(part.FileName)
	size, _, err := h.Store.Save(ctx, key, bytes.NewReader(data))
	if err != nil {
		return Stored{}, fmt.Errorf("%w: store %s: %w", ErrUpload, part.Field, err)
	}
	metrics.ObserveUpload(size)

	stored := Stored{
		Field:     part.Field,
		Key:       key,
		Reference: h.Reference(key),
		SizeBytes: size,
		MimeType:  mimeType,
	}
	telemetry.Info("upload.stored", map[string]any{
		"field":      stored.Field,
		"key":        stored.Key,
		"size_bytes": stored.SizeBytes,
		"mime_type":  stored.MimeType,
	})
	return stored, nil
}

// Open returns the attachment bytes behind a reference.
func (h *Handler) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	key, err := h.KeyFromReference(reference)
	if err != nil {
		return nil, err
	}
	return h.Store.Open(ctx, key)
}

// Remove deletes the attachment behind a reference.
func (h *Handler) Remove(ctx context.Context, reference string) error {
	key, err := h.KeyFromReference(reference)
	if err != nil {
		return err
	}
	if err := h.Store.Delete(ctx, key); err != nil {
		return err
	}
	metrics.IncUploadsRemoved()
	telemetry.Info("upload.removed", map[string]any{"key": key})
	return nil
}

// Reference maps a storage key onto its public path.
func (h *Handler) Reference(key string) string {
	return h.Mount + "/" + strings.TrimLeft(key, "/")
}

// KeyFromReference inverts Reference. Absolute URLs are accepted when their path lies below the mount.
func (h *Handler) KeyFromReference(reference string) (string, error) {
	p := strings.TrimSpace(reference)
	if u, err := url.Parse(p); err == nil && u.Scheme != "" {
		p = u.Path
	}
	prefix := h.Mount + "/"
	clean := path.Clean(p)
	if !strings.HasPrefix(clean, prefix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, reference)
	}
	key := strings.TrimPrefix(clean, prefix)
	if key == "" || key == "." || strings.HasPrefix(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, reference)
	}
	return key, nil
}

func (h *Handler) newKey(originalName string) string {
	name, err := util.SanitizeFileName(originalName)
	if err != nil {
		name = fallbackFileName
	}
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	return fmt.Sprintf("%d-%s-%s", now().UnixMilli(), randomID(), name)
}

func normalizeMount(mount string) string {
	m := "/" + strings.Trim(strings.TrimSpace(mount), "/")
	if m == "/" {
		return "/uploads"
	}
	return m
}

func randomID() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(b[:])
}
