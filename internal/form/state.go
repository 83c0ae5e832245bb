package form

import (
	"jobtracker-backend/internal/client"
	"jobtracker-backend/internal/jobs"
)

// State is the list plus form state of the tracker UI.
type State struct {
	Jobs          []jobs.Job
	Draft         Draft
	SelectedID    string
	EditingID     string
	PendingDelete string
}

// InitialState returns an empty list with a blank draft.
func InitialState() State {
	return State{Draft: EmptyDraft()}
}

// Editing reports whether submitting the draft updates an existing job.
func (s State) Editing() bool {
	return s.EditingID != ""
}

// Find returns the listed job with id.
func (s State) Find(id string) (jobs.Job, bool) {
	for _, j := range s.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return jobs.Job{}, false
}

// Action is an event applied by Reduce.
type Action interface {
	action()
}

type (
	// SetField edits one text field of the draft.
	SetField struct {
		Field Field
		Value string
	}
	// AttachFile selects or clears a file for a slot.
	AttachFile struct {
		Kind jobs.AttachmentKind
		File *client.File
	}
	// Loaded replaces the list with a fresh server snapshot.
	Loaded struct{ Jobs []jobs.Job }
	// Select marks a job as the one shown in detail.
	Select struct{ ID string }
	// StartEdit copies a listed job into the draft.
	StartEdit struct{ ID string }
	// CancelEdit discards the draft and leaves edit mode.
	CancelEdit struct{}
	// RequestDelete records a delete awaiting confirmation.
	RequestDelete struct{ ID string }
	// Submitted records a job the server accepted.
	Submitted struct{ Job jobs.Job }
	// Deleted removes a job from the list.
	Deleted struct{ ID string }
	// Reset returns to the initial form while keeping the list.
	Reset struct{}
)

func (SetField) action()      {}
func (AttachFile) action()    {}
func (Loaded) action()        {}
func (Select) action()        {}
func (StartEdit) action()     {}
func (CancelEdit) action()    {}
func (RequestDelete) action() {}
func (Submitted) action()     {}
func (Deleted) action()       {}
func (Reset) action()         {}

// Reduce returns the state after a. The input state is never modified.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetField:
		if d, err := s.Draft.Set(a.Field, a.Value); err == nil {
			s.Draft = d
		}
	case AttachFile:
		s.Draft = s.Draft.Attach(a.Kind, a.File)
	case Loaded:
		s.Jobs = append([]jobs.Job(nil), a.Jobs...)
		if _, ok := s.Find(s.SelectedID); !ok {
			s.SelectedID = ""
		}
	case Select:
		s.SelectedID = a.ID
	case StartEdit:
		job, ok := s.Find(a.ID)
		if !ok {
			return s
		}
		s.EditingID = job.ID
		s.Draft = DraftFromJob(job)
	case CancelEdit:
		s.EditingID = ""
		s.Draft = EmptyDraft()
	case RequestDelete:
		s.PendingDelete = a.ID
	case Submitted:
		s.Jobs = upsert(s.Jobs, a.Job)
		s.EditingID = ""
		s.Draft = EmptyDraft()
	case Deleted:
		s.Jobs = without(s.Jobs, a.ID)
		if s.SelectedID == a.ID {
			s.SelectedID = ""
		}
		if s.EditingID == a.ID {
			s.EditingID = ""
			s.Draft = EmptyDraft()
		}
		s.PendingDelete = ""
	case Reset:
		s.Draft = EmptyDraft()
		s.EditingID = ""
		s.PendingDelete = ""
	}
	return s
}

func upsert(list []jobs.Job, job jobs.Job) []jobs.Job {
	out := make([]jobs.Job, 0, len(list)+1)
	replaced := false
	for _, j := range list {
		if j.ID == job.ID {
			out = append(out, job)
			replaced = true
			continue
		}
		out = append(out, j)
	}
	if !replaced {
		out = append([]jobs.Job{job}, out...)
	}
	return out
}

func without(list []jobs.Job, id string) []jobs.Job {
	out := make([]jobs.Job, 0, len(list))
	for _, j := range list {
		if j.ID != id {
			out = append(out, j)
		}
	}
	return out
}
