package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Job
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Job)}
}

// Create stores job under a fresh id.
func (r *MemoryRepo) Create(ctx context.Context, job Job) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job.ID = uuid.NewString()
	r.data[job.ID] = job
	return job, nil
}

// List returns every job in display order.
func (r *MemoryRepo) List(ctx context.Context) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Job, 0, len(r.data))
	for _, job := range r.data {
		out = append(out, job)
	}
	r.mu.RUnlock()
	sortJobs(out)
	return out, nil
}

// GetByID returns a job by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.data[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// Update replaces the stored job's fields and the attachment slots named in attachments.
func (r *MemoryRepo) Update(ctx context.Context, job Job, attachments AttachmentSet) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.data[job.ID]
	if !ok {
		return Job{}, ErrNotFound
	}
	if !attachments.Resume {
		job.Resume = stored.Resume
	}
	if !attachments.CoverLetter {
		job.CoverLetter = stored.CoverLetter
	}
	job.CreatedAt = stored.CreatedAt
	r.data[job.ID] = job
	return job, nil
}

// Delete removes a job by id.
func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// CountReferences counts jobs holding reference in either attachment slot.
func (r *MemoryRepo) CountReferences(ctx context.Context, reference string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, job := range r.data {
		for _, ref := range job.References() {
			if ref == reference {
				n++
				break
			}
		}
	}
	return n, nil
}

// ListReferences returns the distinct attachment references held by any job.
func (r *MemoryRepo) ListReferences(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, job := range r.data {
		for _, ref := range job.References() {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			out = append(out, ref)
		}
	}
	return out, nil
}
