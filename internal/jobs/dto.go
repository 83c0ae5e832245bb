package jobs

import "time"

// JobResponse is the outward-facing representation of a job.
type JobResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Link        string    `json:"link"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	DateApplied *string   `json:"dateApplied"`
	Resume      *string   `json:"resume"`
	CoverLetter *string   `json:"coverLetter"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ToResponse renders job for the wire.
func ToResponse(job Job) JobResponse {
	resp := JobResponse{
		ID:          job.ID,
		Title:       job.Title,
		Company:     job.Company,
		Location:    job.Location,
		Link:        job.Link,
		Status:      string(job.Status),
		Notes:       job.Notes,
		Resume:      job.Resume,
		CoverLetter: job.CoverLetter,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
	if job.DateApplied != nil {
		d := FormatDate(*job.DateApplied)
		resp.DateApplied = &d
	}
	return resp
}

// Job converts a decoded response back into the domain type.
func (r JobResponse) Job() (Job, error) {
	job := Job{
		ID:          r.ID,
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		Link:        r.Link,
		Status:      Status(r.Status),
		Notes:       r.Notes,
		Resume:      r.Resume,
		CoverLetter: r.CoverLetter,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.DateApplied != nil && *r.DateApplied != "" {
		d, err := ParseDate(*r.DateApplied)
		if err != nil {
			return Job{}, err
		}
		job.DateApplied = &d
	}
	return job, nil
}

func toResponses(list []Job) []JobResponse {
	out := make([]JobResponse, 0, len(list))
	for _, job := range list {
		out = append(out, ToResponse(job))
	}
	return out
}

// InputRequest is the JSON body accepted on create.
type InputRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Link        string `json:"link"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	DateApplied string `json:"dateApplied"`
}

// PatchRequest is the JSON body accepted on update. Omitted keys are left unchanged;
// an empty dateApplied clears the date.
type PatchRequest struct {
	Title       *string `json:"title,omitempty"`
	Company     *string `json:"company,omitempty"`
	Location    *string `json:"location,omitempty"`
	Link        *string `json:"link,omitempty"`
	Status      *string `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	DateApplied *string `json:"dateApplied,omitempty"`
}

// Patch converts the request into a domain patch.
func (p PatchRequest) Patch() Patch {
	return Patch(p)
}

// Input converts the request into a domain input.
func (r InputRequest) Input() Input {
	return Input(r)
}
