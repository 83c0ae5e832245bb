package jobs

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"jobtracker-backend/internal/shared/telemetry"
)

// Input carries the form values of a create request.
type Input struct {
	Title       string
	Company     string
	Location    string
	Link        string
	Status      string
	Notes       string
	DateApplied string
}

// Patch carries the fields supplied to an update. Nil means unchanged.
// An empty DateApplied clears the stored date.
type Patch struct {
	Title       *string
	Company     *string
	Location    *string
	Link        *string
	Status      *string
	Notes       *string
	DateApplied *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Company == nil && p.Location == nil && p.Link == nil &&
		p.Status == nil && p.Notes == nil && p.DateApplied == nil
}

// PatchFromInput treats every field of in as supplied.
func PatchFromInput(in Input) Patch {
	return Patch{
		Title:       &in.Title,
		Company:     &in.Company,
		Location:    &in.Location,
		Link:        &in.Link,
		Status:      &in.Status,
		Notes:       &in.Notes,
		DateApplied: &in.DateApplied,
	}
}

// Validator normalizes inputs. Strict rejects malformed dates and links instead of dropping them.
type Validator struct {
	Strict bool
}

// Job builds a new record from in.
func (v Validator) Job(in Input) (Job, error) {
	job := Job{
		Title:    in.Title,
		Company:  in.Company,
		Location: in.Location,
		Notes:    in.Notes,
	}
	if err := requireText("title", in.Title); err != nil {
		return Job{}, err
	}
	if err := requireText("company", in.Company); err != nil {
		return Job{}, err
	}

	status, err := ParseStatus(in.Status)
	if err != nil {
		return Job{}, err
	}
	job.Status = status

	if job.Link, err = v.link(in.Link); err != nil {
		return Job{}, err
	}
	if job.DateApplied, err = v.date(in.DateApplied); err != nil {
		return Job{}, err
	}
	return job, nil
}

// Apply merges p into job.
func (v Validator) Apply(job Job, p Patch) (Job, error) {
	if p.Title != nil {
		if err := requireText("title", *p.Title); err != nil {
			return Job{}, err
		}
		job.Title = *p.Title
	}
	if p.Company != nil {
		if err := requireText("company", *p.Company); err != nil {
			return Job{}, err
		}
		job.Company = *p.Company
	}
	if p.Status != nil {
		status, err := ParseStatus(*p.Status)
		if err != nil {
			return Job{}, err
		}
		job.Status = status
	}
	if p.Location != nil {
		job.Location = *p.Location
	}
	if p.Notes != nil {
		job.Notes = *p.Notes
	}
	if p.Link != nil {
		link, err := v.link(*p.Link)
		if err != nil {
			return Job{}, err
		}
		job.Link = link
	}
	if p.DateApplied != nil {
		date, err := v.date(*p.DateApplied)
		if err != nil {
			return Job{}, err
		}
		job.DateApplied = date
	}
	return job, nil
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	return nil
}

func (v Validator) date(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		if v.Strict {
			return nil, err
		}
		telemetry.Warn("job.date_ignored", map[string]any{"value": raw})
		return nil, nil
	}
	return &t, nil
}

func (v Validator) link(raw string) (string, error) {
	if !v.Strict || strings.TrimSpace(raw) == "" {
		return raw, nil
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: link must be an http(s) URL", ErrValidation)
	}
	return raw, nil
}
