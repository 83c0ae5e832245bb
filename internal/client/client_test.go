package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker-backend/internal/bootstrap"
	"jobtracker-backend/internal/jobs"
	"jobtracker-backend/internal/shared/config"
)

const pdfData = "%PDF-1.4\n% client test\n%%EOF\n"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(config.Config{
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		PublicMount:     "/uploads",
		MaxUploadBytes:  1 << 20,
	})
	require.NoError(t, err)
	srv := httptest.NewServer(app.Router)
	t.Cleanup(srv.Close)
	return srv
}

func strPtr(s string) *string { return &s }

func TestClientRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	created, err := c.Create(ctx, jobs.Input{
		Title: "Engineer", Company: "Acme", DateApplied: "2024-03-01", Notes: "first",
	}, Files{Resume: &File{Name: "cv.pdf", Data: []byte(pdfData)}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, jobs.StatusApplied, created.Status)
	require.NotNil(t, created.Resume)
	assert.True(t, strings.HasPrefix(*created.Resume, "/uploads/"))

	resp, err := srv.Client().Get(srv.URL + *created.Resume)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	updated, err := c.Update(ctx, created.ID, jobs.Patch{Status: strPtr("Interviewing")}, Files{})
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusInterviewing, updated.Status)
	assert.Equal(t, "first", updated.Notes)
	assert.Equal(t, *created.Resume, *updated.Resume)

	replaced, err := c.Update(ctx, created.ID, jobs.Patch{}, Files{CoverLetter: &File{Name: "letter.pdf", Data: []byte(pdfData)}})
	require.NoError(t, err)
	require.NotNil(t, replaced.CoverLetter)
	assert.Equal(t, jobs.StatusInterviewing, replaced.Status)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, replaced.CoverLetter, got.CoverLetter)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2024-03-01", jobs.FormatDate(*list[0].DateApplied))

	require.NoError(t, c.Delete(ctx, created.ID))
	_, err = c.Get(ctx, created.ID)
	assert.ErrorIs(t, err, jobs.ErrNotFound)
	assert.ErrorIs(t, c.Delete(ctx, created.ID), jobs.ErrNotFound)
}

func TestClientValidationError(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, nil)

	_, err := c.Create(context.Background(), jobs.Input{Company: "Acme"}, Files{})
	require.Error(t, err)
	assert.ErrorIs(t, err, jobs.ErrValidation)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Contains(t, apiErr.Message, "title")
}

func TestClientConcurrentUploadsGetDistinctReferences(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, srv.Client())
	ctx := context.Background()

	const n = 8
	refs := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			job, err := c.Create(ctx, jobs.Input{Title: "t", Company: "c"},
				Files{Resume: &File{Name: "same name.pdf", Data: []byte(pdfData)}})
			errs[i] = err
			if err == nil && job.Resume != nil {
				refs[i] = *job.Resume
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.NotEmpty(t, refs[i])
		assert.False(t, seen[refs[i]], "duplicate reference %s", refs[i])
		seen[refs[i]] = true
	}
}

func TestAPIErrorUnwrap(t *testing.T) {
	tests := []struct {
		err  *APIError
		want error
	}{
		{&APIError{Status: 400}, jobs.ErrValidation},
		{&APIError{Status: 404}, jobs.ErrNotFound},
		{&APIError{Status: 413}, ErrTooLarge},
		{&APIError{Status: 500, Code: "upload_error"}, jobs.ErrUpload},
		{&APIError{Status: 500, Code: "persistence_error"}, jobs.ErrPersistence},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.want, tt.err.Error())
	}
}
