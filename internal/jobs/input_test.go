package jobs

import (
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestValidatorJob(t *testing.T) {
	cases := []struct {
		name    string
		strict  bool
		in      Input
		wantErr bool
		check   func(t *testing.T, job Job)
	}{
		{
			name: "defaults status",
			in:   Input{Title: "t", Company: "c"},
			check: func(t *testing.T, job Job) {
				if job.Status != StatusApplied {
					t.Fatalf("expected Applied, got %s", job.Status)
				}
			},
		},
		{
			name: "case insensitive status",
			in:   Input{Title: "t", Company: "c", Status: "offer"},
			check: func(t *testing.T, job Job) {
				if job.Status != StatusOffer {
					t.Fatalf("expected Offer, got %s", job.Status)
				}
			},
		},
		{name: "unknown status", in: Input{Title: "t", Company: "c", Status: "Ghosted"}, wantErr: true},
		{name: "blank title", in: Input{Title: " ", Company: "c"}, wantErr: true},
		{name: "blank company", in: Input{Title: "t"}, wantErr: true},
		{
			name: "lenient drops bad date",
			in:   Input{Title: "t", Company: "c", DateApplied: "soon"},
			check: func(t *testing.T, job Job) {
				if job.DateApplied != nil {
					t.Fatalf("expected nil date")
				}
			},
		},
		{name: "strict rejects bad date", strict: true, in: Input{Title: "t", Company: "c", DateApplied: "soon"}, wantErr: true},
		{name: "strict rejects bad link", strict: true, in: Input{Title: "t", Company: "c", Link: "acme.example"}, wantErr: true},
		{
			name:   "strict accepts rfc3339",
			strict: true,
			in:     Input{Title: "t", Company: "c", DateApplied: "2024-02-01T23:30:00Z", Link: "https://acme.example"},
			check: func(t *testing.T, job Job) {
				want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
				if job.DateApplied == nil || !job.DateApplied.Equal(want) {
					t.Fatalf("expected %v, got %v", want, job.DateApplied)
				}
			},
		},
		{
			name: "lenient keeps link as-is",
			in:   Input{Title: "t", Company: "c", Link: "acme careers page"},
			check: func(t *testing.T, job Job) {
				if job.Link != "acme careers page" {
					t.Fatalf("unexpected link %q", job.Link)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			job, err := Validator{Strict: tc.strict}.Job(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.check != nil {
				tc.check(t, job)
			}
		})
	}
}

func TestValidatorApply(t *testing.T) {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := Job{ID: "1", Title: "t", Company: "c", Status: StatusApplied, Notes: "n", DateApplied: &date}
	v := Validator{}

	next, err := v.Apply(base, Patch{Status: strPtr("Rejected")})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if next.Status != StatusRejected || next.Title != "t" || next.Notes != "n" || next.DateApplied == nil {
		t.Fatalf("unexpected job %+v", next)
	}

	next, err = v.Apply(base, Patch{DateApplied: strPtr("")})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if next.DateApplied != nil {
		t.Fatalf("expected cleared date")
	}

	if _, err := v.Apply(base, Patch{Company: strPtr("")}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !(Patch{}).Empty() || PatchFromInput(Input{}).Empty() {
		t.Fatalf("unexpected Empty result")
	}
}
