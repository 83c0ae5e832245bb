package form

import (
	"context"
	"sync"

	log "github.com/go-pkgz/lgr"

	"jobtracker-backend/internal/client"
	"jobtracker-backend/internal/jobs"
)

// API is the subset of the job client the controller drives.
type API interface {
	List(ctx context.Context) ([]jobs.Job, error)
	Get(ctx context.Context, id string) (jobs.Job, error)
	Create(ctx context.Context, in jobs.Input, files client.Files) (jobs.Job, error)
	Update(ctx context.Context, id string, patch jobs.Patch, files client.Files) (jobs.Job, error)
	Delete(ctx context.Context, id string) error
}

// Controller owns a State and applies server results to it.
// Failed calls leave the state untouched.
type Controller struct {
	API API

	mu    sync.Mutex
	state State
}

// NewController starts from InitialState.
func NewController(api API) *Controller {
	return &Controller{API: api, state: InitialState()}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies a local action.
func (c *Controller) Dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a)
	return c.state
}

// Refresh reloads the list from the server.
func (c *Controller) Refresh(ctx context.Context) error {
	list, err := c.API.List(ctx)
	if err != nil {
		log.Printf("[WARN] failed to load jobs: %v", err)
		return err
	}
	c.Dispatch(Loaded{Jobs: list})
	return nil
}

// Submit validates the draft and creates a job, or updates the one being edited.
func (c *Controller) Submit(ctx context.Context) (jobs.Job, error) {
	st := c.State()
	in, err := st.Draft.Validate()
	if err != nil {
		log.Printf("[WARN] draft rejected: %v", err)
		return jobs.Job{}, err
	}

	var job jobs.Job
	if st.Editing() {
		job, err = c.API.Update(ctx, st.EditingID, jobs.PatchFromInput(in), st.Draft.Files())
	} else {
		job, err = c.API.Create(ctx, in, st.Draft.Files())
	}
	if err != nil {
		log.Printf("[WARN] failed to save job: %v", err)
		return jobs.Job{}, err
	}
	c.Dispatch(Submitted{Job: job})
	return job, nil
}

// Select fetches a job and marks it selected.
func (c *Controller) Select(ctx context.Context, id string) (jobs.Job, error) {
	job, err := c.API.Get(ctx, id)
	if err != nil {
		log.Printf("[WARN] failed to load job %s: %v", id, err)
		return jobs.Job{}, err
	}
	c.mu.Lock()
	c.state.Jobs = upsert(c.state.Jobs, job)
	c.state = Reduce(c.state, Select{ID: id})
	c.mu.Unlock()
	return job, nil
}

// StartEdit loads the job into the draft, fetching it when it is not listed.
func (c *Controller) StartEdit(ctx context.Context, id string) error {
	if _, ok := c.State().Find(id); !ok {
		if _, err := c.Select(ctx, id); err != nil {
			return err
		}
	}
	c.Dispatch(StartEdit{ID: id})
	return nil
}

// Delete asks confirm and removes the job only when it returns true.
// The returned bool reports whether the job was deleted.
func (c *Controller) Delete(ctx context.Context, id string, confirm func(jobs.Job) bool) (bool, error) {
	job, ok := c.State().Find(id)
	if !ok {
		var err error
		if job, err = c.API.Get(ctx, id); err != nil {
			log.Printf("[WARN] failed to load job %s: %v", id, err)
			return false, err
		}
	}

	c.Dispatch(RequestDelete{ID: id})
	if confirm == nil || !confirm(job) {
		c.mu.Lock()
		c.state.PendingDelete = ""
		c.mu.Unlock()
		return false, nil
	}

	if err := c.API.Delete(ctx, id); err != nil {
		log.Printf("[WARN] failed to delete job %s: %v", id, err)
		c.mu.Lock()
		c.state.PendingDelete = ""
		c.mu.Unlock()
		return false, err
	}
	c.Dispatch(Deleted{ID: id})
	return true, nil
}
