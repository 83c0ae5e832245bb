package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"jobtracker-backend/internal/extract"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/storage/object"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/uploads"
)

// Files holds the optional attachment parts of a request. A nil part leaves the slot untouched.
type Files struct {
	Resume      *uploads.Part
	CoverLetter *uploads.Part
}

// Service contains job business logic.
type Service struct {
	Repo      Repo
	Uploads   *uploads.Handler
	Validator Validator

	now func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, up *uploads.Handler, strict bool) *Service {
	return &Service{
		Repo:      repo,
		Uploads:   up,
		Validator: Validator{Strict: strict},
		now:       time.Now,
	}
}

// Create validates in, stores any attachments and persists the record.
// Attachments written for a record that fails to persist are removed again.
func (s *Service) Create(ctx context.Context, in Input, files Files) (Job, error) {
	job, err := s.Validator.Job(in)
	if err != nil {
		return Job{}, err
	}

	stored, err := s.storeFiles(ctx, files)
	if err != nil {
		metrics.IncJobErrors()
		return Job{}, err
	}
	applyStored(&job, stored)

	now := s.clock().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	created, err := s.Repo.Create(ctx, job)
	if err != nil {
		s.discard(ctx, stored)
		metrics.IncJobErrors()
		return Job{}, fmt.Errorf("%w: create job: %w", ErrPersistence, err)
	}

	metrics.IncJobsCreated()
	telemetry.Info("job.created", map[string]any{
		"job_id":      created.ID,
		"status":      string(created.Status),
		"attachments": len(stored),
	})
	return created, nil
}

// List returns every job in display order.
func (s *Service) List(ctx context.Context) ([]Job, error) {
	list, err := s.Repo.List(ctx)
	if err != nil {
		metrics.IncJobErrors()
		return nil, fmt.Errorf("%w: list jobs: %w", ErrPersistence, err)
	}
	return list, nil
}

// Get returns a single job.
func (s *Service) Get(ctx context.Context, id string) (Job, error) {
	job, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Job{}, ErrNotFound
		}
		metrics.IncJobErrors()
		return Job{}, fmt.Errorf("%w: get job: %w", ErrPersistence, err)
	}
	return job, nil
}

// Update merges patch into the stored job. Replacement attachments take over their slot
// and the previous file is released once no record refers to it.
func (s *Service) Update(ctx context.Context, id string, patch Patch, files Files) (Job, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return Job{}, err
	}

	next, err := s.Validator.Apply(current, patch)
	if err != nil {
		return Job{}, err
	}

	stored, err := s.storeFiles(ctx, files)
	if err != nil {
		metrics.IncJobErrors()
		return Job{}, err
	}
	applyStored(&next, stored)
	next.UpdatedAt = s.clock().UTC()

	replaced := AttachmentSet{Resume: files.Resume != nil, CoverLetter: files.CoverLetter != nil}
	updated, err := s.Repo.Update(ctx, next, replaced)
	if err != nil {
		s.discard(ctx, stored)
		if errors.Is(err, ErrNotFound) {
			return Job{}, ErrNotFound
		}
		metrics.IncJobErrors()
		return Job{}, fmt.Errorf("%w: update job: %w", ErrPersistence, err)
	}

	s.release(ctx, replacedReferences(current, updated, replaced))
	metrics.IncJobsUpdated()
	telemetry.Info("job.updated", map[string]any{
		"job_id":      updated.ID,
		"status":      string(updated.Status),
		"attachments": len(stored),
	})
	return updated, nil
}

// Delete removes a job and releases its attachments.
func (s *Service) Delete(ctx context.Context, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		metrics.IncJobErrors()
		return fmt.Errorf("%w: delete job: %w", ErrPersistence, err)
	}

	s.release(ctx, current.References())
	metrics.IncJobsDeleted()
	telemetry.Info("job.deleted", map[string]any{"job_id": id})
	return nil
}

// AttachmentText extracts plain text from a stored pdf or docx attachment.
func (s *Service) AttachmentText(ctx context.Context, id string, kind AttachmentKind) (string, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	ref := job.Reference(kind)
	if ref == nil || *ref == "" {
		return "", fmt.Errorf("%w: no %s attached", ErrNotFound, kind)
	}

	rc, err := s.Uploads.Open(ctx, *ref)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) || errors.Is(err, uploads.ErrInvalidReference) {
			return "", fmt.Errorf("%w: %s file missing", ErrNotFound, kind)
		}
		return "", fmt.Errorf("%w: open %s: %w", ErrUpload, kind, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrUpload, kind, err)
	}
	text, err := extract.Text(ctx, data, *ref)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupported) {
			return "", fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return "", fmt.Errorf("%w: extract %s: %w", ErrUpload, kind, err)
	}
	return text, nil
}

func (s *Service) storeFiles(ctx context.Context, files Files) ([]uploads.Stored, error) {
	var stored []uploads.Stored
	for _, part := range []*uploads.Part{files.Resume, files.CoverLetter} {
		if part == nil {
			continue
		}
		st, err := s.Uploads.Save(ctx, *part)
		if err != nil {
			s.discard(ctx, stored)
			if errors.Is(err, uploads.ErrUnsupportedType) {
				return nil, fmt.Errorf("%w: %w", ErrValidation, err)
			}
			return nil, fmt.Errorf("%w: %w", ErrUpload, err)
		}
		stored = append(stored, st)
	}
	return stored, nil
}

func applyStored(job *Job, stored []uploads.Stored) {
	for _, st := range stored {
		ref := st.Reference
		switch AttachmentKind(st.Field) {
		case AttachmentResume:
			job.Resume = &ref
		case AttachmentCoverLetter:
			job.CoverLetter = &ref
		}
	}
}

// replacedReferences lists the previous references of the slots this update rewrote.
func replacedReferences(before, after Job, rewritten AttachmentSet) []string {
	var out []string
	if rewritten.Resume && before.Resume != nil && (after.Resume == nil || *after.Resume != *before.Resume) {
		out = append(out, *before.Resume)
	}
	if rewritten.CoverLetter && before.CoverLetter != nil && (after.CoverLetter == nil || *after.CoverLetter != *before.CoverLetter) {
		out = append(out, *before.CoverLetter)
	}
	return out
}

// discard removes files written during a request that did not commit.
func (s *Service) discard(ctx context.Context, stored []uploads.Stored) {
	for _, st := range stored {
		if err := s.Uploads.Remove(ctx, st.Reference); err != nil {
			telemetry.Warn("upload.discard_failed", map[string]any{
				"reference": st.Reference,
				"error":     err.Error(),
			})
		}
	}
}

// release removes files that no remaining record references.
func (s *Service) release(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		n, err := s.Repo.CountReferences(ctx, ref)
		if err != nil {
			telemetry.Warn("upload.release_skipped", map[string]any{"reference": ref, "error": err.Error()})
			continue
		}
		if n > 0 {
			continue
		}
		if err := s.Uploads.Remove(ctx, ref); err != nil {
			telemetry.Warn("upload.release_failed", map[string]any{"reference": ref, "error": err.Error()})
		}
	}
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
