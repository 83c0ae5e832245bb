package jobs

import (
	"fmt"
	"strings"
	"time"
)

// Status is the stage an application is in.
type Status string

const (
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusOffer        Status = "Offer"
	StatusRejected     Status = "Rejected"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{StatusApplied, StatusInterviewing, StatusOffer, StatusRejected}

// ParseStatus matches raw case-insensitively. An empty value yields StatusApplied.
func ParseStatus(raw string) (Status, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return StatusApplied, nil
	}
	for _, s := range Statuses {
		if strings.EqualFold(clean, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: status must be one of Applied, Interviewing, Offer, Rejected", ErrValidation)
}

// Job is one tracked application.
type Job struct {
	ID          string
	Title       string
	Company     string
	Location    string
	Link        string
	Status      Status
	Notes       string
	DateApplied *time.Time
	Resume      *string
	CoverLetter *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// References returns the attachment references held by the job.
func (j Job) References() []string {
	var out []string
	if j.Resume != nil && *j.Resume != "" {
		out = append(out, *j.Resume)
	}
	if j.CoverLetter != nil && *j.CoverLetter != "" {
		out = append(out, *j.CoverLetter)
	}
	return out
}

// AttachmentKind names one of the two file slots on a job.
type AttachmentKind string

const (
	AttachmentResume      AttachmentKind = "resume"
	AttachmentCoverLetter AttachmentKind = "coverLetter"
)

// ParseAttachmentKind accepts "resume", "coverLetter" and "cover-letter".
func ParseAttachmentKind(raw string) (AttachmentKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "resume":
		return AttachmentResume, nil
	case "coverletter", "cover-letter", "cover_letter":
		return AttachmentCoverLetter, nil
	default:
		return "", fmt.Errorf("%w: unknown attachment %q", ErrValidation, raw)
	}
}

// Reference returns the job's reference for kind, or nil.
func (j Job) Reference(kind AttachmentKind) *string {
	if kind == AttachmentCoverLetter {
		return j.CoverLetter
	}
	return j.Resume
}

const dateLayout = "2006-01-02"

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and truncates to the UTC day.
func ParseDate(raw string) (time.Time, error) {
	clean := strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, clean); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, clean)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dateApplied %q is not a date", ErrValidation, raw)
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
