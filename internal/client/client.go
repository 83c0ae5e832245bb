// Package client is a thin HTTP caller for the job tracker API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobtracker-backend/internal/jobs"
)

const defaultTimeout = 30 * time.Second

// ErrTooLarge is returned when the server rejects a request body as oversized.
var ErrTooLarge = errors.New("request body too large")

// File is an attachment held in memory.
type File struct {
	Name string
	Data []byte
}

// Files carries the optional attachments of a submission.
type Files struct {
	Resume      *File
	CoverLetter *File
}

// Empty reports whether no attachment is set.
func (f Files) Empty() bool {
	return f.Resume == nil && f.CoverLetter == nil
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto the job service's sentinel errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest:
		return jobs.ErrValidation
	case e.Status == http.StatusNotFound:
		return jobs.ErrNotFound
	case e.Status == http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	case e.Code == "upload_error":
		return jobs.ErrUpload
	case e.Status >= 500:
		return jobs.ErrPersistence
	default:
		return nil
	}
}

// Client calls the job endpoints under BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New constructs a Client. A nil httpClient gets a default with a timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

// List returns every job in server order.
func (c *Client) List(ctx context.Context) ([]jobs.Job, error) {
	var out []jobs.JobResponse
	if err := c.do(ctx, http.MethodGet, "/api/jobs", "", nil, &out); err != nil {
		return nil, err
	}
	list := make([]jobs.Job, 0, len(out))
	for _, r := range out {
		job, err := r.Job()
		if err != nil {
			return nil, fmt.Errorf("decode job %s: %w", r.ID, err)
		}
		list = append(list, job)
	}
	return list, nil
}

// Get returns a single job.
func (c *Client) Get(ctx context.Context, id string) (jobs.Job, error) {
	return c.jobRequest(ctx, http.MethodGet, jobPath(id), "", nil)
}

// Create submits a new job as multipart form data.
func (c *Client) Create(ctx context.Context, in jobs.Input, files Files) (jobs.Job, error) {
	body, contentType, err := encodeMultipart(jobs.PatchFromInput(in), files)
	if err != nil {
		return jobs.Job{}, err
	}
	return c.jobRequest(ctx, http.MethodPost, "/api/jobs", contentType, body)
}

// Update sends patch as JSON, or as multipart form data when replacement files are attached.
func (c *Client) Update(ctx context.Context, id string, patch jobs.Patch, files Files) (jobs.Job, error) {
	if files.Empty() {
		payload, err := json.Marshal(jobs.PatchRequest(patch))
		if err != nil {
			return jobs.Job{}, err
		}
		return c.jobRequest(ctx, http.MethodPut, jobPath(id), "application/json", bytes.NewReader(payload))
	}
	body, contentType, err := encodeMultipart(patch, files)
	if err != nil {
		return jobs.Job{}, err
	}
	return c.jobRequest(ctx, http.MethodPut, jobPath(id), contentType, body)
}

// Delete removes a job.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, jobPath(id), "", nil, nil)
}

// AttachmentText returns the plain text of a stored attachment.
func (c *Client) AttachmentText(ctx context.Context, id string, kind jobs.AttachmentKind) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	path := jobPath(id) + "/attachments/" + url.PathEscape(string(kind)) + "/text"
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *Client) jobRequest(ctx context.Context, method, path, contentType string, body io.Reader) (jobs.Job, error) {
	var out jobs.JobResponse
	if err := c.do(ctx, method, path, contentType, body, &out); err != nil {
		return jobs.Job{}, err
	}
	return out.Job()
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}

func encodeMultipart(patch jobs.Patch, files Files) (io.Reader, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := []struct {
		name  string
		value *string
	}{
		{"title", patch.Title},
		{"company", patch.Company},
		{"location", patch.Location},
		{"link", patch.Link},
		{"status", patch.Status},
		{"notes", patch.Notes},
		{"dateApplied", patch.DateApplied},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := writer.WriteField(f.name, *f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}

	attachments := []struct {
		kind jobs.AttachmentKind
		file *File
	}{
		{jobs.AttachmentResume, files.Resume},
		{jobs.AttachmentCoverLetter, files.CoverLetter},
	}
	for _, a := range attachments {
		if a.file == nil {
			continue
		}
		fw, err := writer.CreateFormFile(string(a.kind), a.file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", a.kind, err)
		}
		if _, err := fw.Write(a.file.Data); err != nil {
			return nil, "", fmt.Errorf("write form file %s: %w", a.kind, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

func jobPath(id string) string {
	return "/api/jobs/" + url.PathEscape(id)
}
