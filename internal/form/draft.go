// Package form holds the editable draft and list state a job tracker front end drives.
package form

import (
	"fmt"
	"strings"

	"jobtracker-backend/internal/client"
	"jobtracker-backend/internal/jobs"
)

// Field names a text input of the draft.
type Field string

const (
	FieldTitle       Field = "title"
	FieldCompany     Field = "company"
	FieldLocation    Field = "location"
	FieldLink        Field = "link"
	FieldStatus      Field = "status"
	FieldNotes       Field = "notes"
	FieldDateApplied Field = "dateApplied"
)

// Draft is the unsaved content of the job form. Methods return modified copies.
type Draft struct {
	Title       string
	Company     string
	Location    string
	Link        string
	Status      string
	Notes       string
	DateApplied string
	Resume      *client.File
	CoverLetter *client.File
}

// EmptyDraft is the form's initial value.
func EmptyDraft() Draft {
	return Draft{Status: string(jobs.StatusApplied)}
}

// DraftFromJob copies a stored job into a draft. File fields start empty.
func DraftFromJob(job jobs.Job) Draft {
	d := Draft{
		Title:    job.Title,
		Company:  job.Company,
		Location: job.Location,
		Link:     job.Link,
		Status:   string(job.Status),
		Notes:    job.Notes,
	}
	if job.DateApplied != nil {
		d.DateApplied = jobs.FormatDate(*job.DateApplied)
	}
	return d
}

// Set returns a copy with field set to value.
func (d Draft) Set(field Field, value string) (Draft, error) {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldCompany:
		d.Company = value
	case FieldLocation:
		d.Location = value
	case FieldLink:
		d.Link = value
	case FieldStatus:
		d.Status = value
	case FieldNotes:
		d.Notes = value
	case FieldDateApplied:
		d.DateApplied = value
	default:
		return d, fmt.Errorf("%w: unknown field %q", jobs.ErrValidation, field)
	}
	return d, nil
}

// Attach returns a copy with file in the given slot. A nil file clears it.
func (d Draft) Attach(kind jobs.AttachmentKind, file *client.File) Draft {
	if file != nil {
		cp := *file
		cp.Data = append([]byte(nil), file.Data...)
		file = &cp
	}
	switch kind {
	case jobs.AttachmentCoverLetter:
		d.CoverLetter = file
	default:
		d.Resume = file
	}
	return d
}

// Files returns the attachments selected in the draft.
func (d Draft) Files() client.Files {
	return client.Files{Resume: d.Resume, CoverLetter: d.CoverLetter}
}

// Validate checks required fields and returns the submission input.
func (d Draft) Validate() (jobs.Input, error) {
	if strings.TrimSpace(d.Title) == "" {
		return jobs.Input{}, fmt.Errorf("%w: title is required", jobs.ErrValidation)
	}
	if strings.TrimSpace(d.Company) == "" {
		return jobs.Input{}, fmt.Errorf("%w: company is required", jobs.ErrValidation)
	}
	status, err := jobs.ParseStatus(d.Status)
	if err != nil {
		return jobs.Input{}, err
	}
	return jobs.Input{
		Title:       d.Title,
		Company:     d.Company,
		Location:    d.Location,
		Link:        d.Link,
		Status:      string(status),
		Notes:       d.Notes,
		DateApplied: d.DateApplied,
	}, nil
}
