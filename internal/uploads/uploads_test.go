package uploads

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/storage/object/local"
)

const pdfBytes = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n"

func newTestHandler(t *testing.T, strict bool) *Handler {
	t.Helper()
	return NewHandler(local.New(t.TempDir()), "/uploads", strict)
}

func TestSaveBuildsTimestampedReference(t *testing.T) {
	h := newTestHandler(t, false)
	h.now = func() time.Time { return time.UnixMilli(1700000000123) }

	stored, err := h.Save(context.Background(), Part{
		Field:    "resume",
		FileName: "my   resume final.pdf",
		Body:     strings.NewReader(pdfBytes),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(stored.Key, "1700000000123-") {
		t.Fatalf("expected millis prefix, got %s", stored.Key)
	}
	if !strings.HasSuffix(stored.Key, "-my_resume_final.pdf") {
		t.Fatalf("expected sanitized name suffix, got %s", stored.Key)
	}
	if stored.Reference != "/uploads/"+stored.Key {
		t.Fatalf("unexpected reference %s", stored.Reference)
	}
	if stored.MimeType != "application/pdf" {
		t.Fatalf("expected pdf, got %s", stored.MimeType)
	}
	if stored.SizeBytes != int64(len(pdfBytes)) {
		t.Fatalf("expected %d bytes, got %d", len(pdfBytes), stored.SizeBytes)
	}
}

func TestSaveStripsPathSeparators(t *testing.T) {
	h := newTestHandler(t, false)
	stored, err := h.Save(context.Background(), Part{
		Field:    "coverLetter",
		FileName: `..\..\etc/passwd.pdf`,
		Body:     strings.NewReader(pdfBytes),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if strings.ContainsAny(stored.Key, `/\`) {
		t.Fatalf("key must not contain separators: %s", stored.Key)
	}
	if !strings.HasSuffix(stored.Key, "-passwd.pdf") {
		t.Fatalf("unexpected key %s", stored.Key)
	}
}

func TestSaveFallsBackForEmptyName(t *testing.T) {
	h := newTestHandler(t, false)
	stored, err := h.Save(context.Background(), Part{Field: "resume", FileName: "  ", Body: strings.NewReader(pdfBytes)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(stored.Key, "-"+fallbackFileName) {
		t.Fatalf("unexpected key %s", stored.Key)
	}
}

func TestStrictModeRejectsNonDocuments(t *testing.T) {
	h := newTestHandler(t, true)
	_, err := h.Save(context.Background(), Part{Field: "resume", FileName: "notes.txt", Body: strings.NewReader("plain text")})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestLenientModeAcceptsNonDocuments(t *testing.T) {
	h := newTestHandler(t, false)
	if _, err := h.Save(context.Background(), Part{Field: "resume", FileName: "notes.txt", Body: strings.NewReader("plain text")}); err != nil {
		t.Fatalf("expected lenient save, got %v", err)
	}
}

func TestConcurrentIdenticalNamesGetDistinctReferences(t *testing.T) {
	h := newTestHandler(t, false)
	fixed := time.UnixMilli(1700000000000)
	h.now = func() time.Time { return fixed }

	const n = 16
	refs := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stored, err := h.Save(context.Background(), Part{Field: "resume", FileName: "cv.pdf", Body: strings.NewReader(pdfBytes)})
			refs[i], errs[i] = stored.Reference, err
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := range refs {
		if errs[i] != nil {
			t.Fatalf("save %d: %v", i, errs[i])
		}
		if seen[refs[i]] {
			t.Fatalf("duplicate reference %s", refs[i])
		}
		seen[refs[i]] = true
	}
}

func TestKeyFromReference(t *testing.T) {
	h := newTestHandler(t, false)
	cases := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "/uploads/1-abc-cv.pdf", want: "1-abc-cv.pdf"},
		{ref: "http://localhost:5000/uploads/1-abc-cv.pdf", want: "1-abc-cv.pdf"},
		{ref: "/uploads/../secret", wantErr: true},
		{ref: "/uploads/", wantErr: true},
		{ref: "/files/1-abc-cv.pdf", wantErr: true},
	}
	for _, tc := range cases {
		got, err := h.KeyFromReference(tc.ref)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidReference) {
				t.Fatalf("%s: expected ErrInvalidReference, got %v", tc.ref, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%s: got %q, %v", tc.ref, got, err)
		}
	}
}

func TestServeStreamsStoredBytes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(t, false)
	stored, err := h.Save(context.Background(), Part{Field: "resume", FileName: "cv.pdf", Body: strings.NewReader(pdfBytes)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	r := gin.New()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, stored.Reference, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != pdfBytes {
		t.Fatalf("body mismatch: %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/uploads/missing.pdf", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRemoveDeletesObject(t *testing.T) {
	h := newTestHandler(t, false)
	stored, err := h.Save(context.Background(), Part{Field: "resume", FileName: "cv.pdf", Body: strings.NewReader(pdfBytes)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	rc, err := h.Open(context.Background(), stored.Reference)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != pdfBytes {
		t.Fatalf("unexpected bytes")
	}

	if err := h.Remove(context.Background(), stored.Reference); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := h.Open(context.Background(), stored.Reference); err == nil {
		t.Fatalf("expected open to fail after remove")
	}
}

type staticRefs []string

func (s staticRefs) ListReferences(context.Context) ([]string, error) { return s, nil }

func TestSweeperRemovesOnlyOldUnreferencedFiles(t *testing.T) {
	h := newTestHandler(t, false)
	ctx := context.Background()
	var refs []string
	for _, name := range []string{"keep.pdf", "orphan-a.pdf", "orphan-b.pdf"} {
		stored, err := h.Save(ctx, Part{Field: "resume", FileName: name, Body: strings.NewReader(pdfBytes)})
		if err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		refs = append(refs, stored.Reference)
	}

	young := &Sweeper{Uploads: h, Records: staticRefs{refs[0]}, Grace: time.Hour}
	res, err := young.Run(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if res.Scanned != 3 || res.Kept != 1 || res.Young != 2 || len(res.Removed) != 0 {
		t.Fatalf("unexpected young result %+v", res)
	}

	dry := &Sweeper{Uploads: h, Records: staticRefs{refs[0]}, Grace: time.Minute, DryRun: true,
		now: func() time.Time { return time.Now().Add(time.Hour) }}
	res, err = dry.Run(ctx)
	if err != nil {
		t.Fatalf("dry sweep: %v", err)
	}
	if len(res.Removed) != 2 {
		t.Fatalf("expected 2 dry-run candidates, got %+v", res)
	}
	if _, err := h.Open(ctx, refs[1]); err != nil {
		t.Fatalf("dry run must keep files: %v", err)
	}

	sweep := &Sweeper{Uploads: h, Records: staticRefs{refs[0]}, Grace: time.Minute, Concurrency: 2,
		now: func() time.Time { return time.Now().Add(time.Hour) }}
	res, err = sweep.Run(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	sort.Strings(res.Removed)
	if len(res.Removed) != 2 || len(res.Failed) != 0 {
		t.Fatalf("unexpected sweep result %+v", res)
	}
	if _, err := h.Open(ctx, refs[0]); err != nil {
		t.Fatalf("referenced file removed: %v", err)
	}
	if _, err := h.Open(ctx, refs[2]); err == nil {
		t.Fatalf("orphan survived sweep")
	}
}
