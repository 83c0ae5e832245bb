package uploads

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/syncs"

	"jobtracker-backend/internal/shared/telemetry"
)

// ReferenceLister reports every attachment reference currently held by a record.
type ReferenceLister interface {
	ListReferences(ctx context.Context) ([]string, error)
}

// Sweeper removes stored files no record references once they are older than Grace.
type Sweeper struct {
	Uploads     *Handler
	Records     ReferenceLister
	Grace       time.Duration
	Concurrency int
	DryRun      bool

	now func() time.Time
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Scanned int
	Kept    int
	Young   int
	Removed []string
	Failed  []string
}

// Run lists the store, subtracts referenced keys and deletes the remainder.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	refs, err := s.Records.ListReferences(ctx)
	if err != nil {
		return res, fmt.Errorf("list references: %w", err)
	}
	referenced := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		key, err := s.Uploads.KeyFromReference(ref)
		if err != nil {
			continue
		}
		referenced[key] = struct{}{}
	}

	infos, err := s.Uploads.Store.List(ctx)
	if err != nil {
		return res, fmt.Errorf("list objects: %w", err)
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	cutoff := now().Add(-s.Grace)

	var candidates []string
	for _, info := range infos {
		res.Scanned++
		if _, ok := referenced[info.Key]; ok {
			res.Kept++
			continue
		}
		if info.ModifiedAt.After(cutoff) {
			res.Young++
			continue
		}
		candidates = append(candidates, info.Key)
	}

	if s.DryRun {
		res.Removed = candidates
		return res, nil
	}

	concurrency := s.Concurrency
	if concurrency < 1 {
		concurrency = 4
	}

	var mu sync.Mutex
	gr := syncs.NewSizedGroup(concurrency)
	for _, key := range candidates {
		gr.Go(func(ctx context.Context) {
			err := s.Uploads.Store.Delete(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				telemetry.Warn("upload.sweep_failed", map[string]any{"key": key, "error": err.Error()})
				res.Failed = append(res.Failed, key)
				return
			}
			res.Removed = append(res.Removed, key)
		})
	}
	gr.Wait()

	telemetry.Info("upload.sweep", map[string]any{
		"scanned": res.Scanned,
		"kept":    res.Kept,
		"young":   res.Young,
		"removed": len(res.Removed),
		"failed":  len(res.Failed),
	})
	return res, nil
}
