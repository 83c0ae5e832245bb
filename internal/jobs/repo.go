package jobs

import (
	"context"
	"sort"
)

// Repo defines persistence operations for job records.
type Repo interface {
	Create(ctx context.Context, job Job) (Job, error)
	List(ctx context.Context) ([]Job, error)
	GetByID(ctx context.Context, id string) (Job, error)
	Update(ctx context.Context, job Job, attachments AttachmentSet) (Job, error)
	Delete(ctx context.Context, id string) error
	CountReferences(ctx context.Context, reference string) (int, error)
	ListReferences(ctx context.Context) ([]string, error)
}

// AttachmentSet names the attachment columns an update rewrites. Unset slots keep
// whatever the stored row holds at write time.
type AttachmentSet struct {
	Resume      bool
	CoverLetter bool
}

// sortJobs orders by dateApplied descending with undated records last, then by createdAt descending.
func sortJobs(list []Job) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch {
		case a.DateApplied != nil && b.DateApplied == nil:
			return true
		case a.DateApplied == nil && b.DateApplied != nil:
			return false
		case a.DateApplied != nil && !a.DateApplied.Equal(*b.DateApplied):
			return a.DateApplied.After(*b.DateApplied)
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
}
