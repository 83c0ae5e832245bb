package jobs

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const pgJobColumns = `id, title, company, location, link, status, notes, date_applied, resume, cover_letter, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a job and returns it with the database-assigned id.
func (r *PGRepo) Create(ctx context.Context, job Job) (Job, error) {
	const query = `
INSERT INTO jobs (
    title,
    company,
    location,
    link,
    status,
    notes,
    date_applied,
    resume,
    cover_letter,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id`

	var id string
	err := r.DB.QueryRowContext(
		ctx,
		query,
		job.Title,
		job.Company,
		job.Location,
		job.Link,
		string(job.Status),
		job.Notes,
		nullTime(job.DateApplied),
		nullString(job.Resume),
		nullString(job.CoverLetter),
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Job{}, err
	}
	job.ID = id
	return job, nil
}

// List returns every job, newest application first.
func (r *PGRepo) List(ctx context.Context) ([]Job, error) {
	const query = `
SELECT ` + pgJobColumns + `
FROM jobs
ORDER BY date_applied DESC NULLS LAST, created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		job, err := scanPGJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

// GetByID fetches a job by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Job{}, ErrNotFound
	}
	const query = `
SELECT ` + pgJobColumns + `
FROM jobs
WHERE id = $1`

	job, err := scanPGJob(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

// Update overwrites the scalar columns and the attachment columns named in attachments,
// returning the row as stored. A statement matching no row yields ErrNotFound.
func (r *PGRepo) Update(ctx context.Context, job Job, attachments AttachmentSet) (Job, error) {
	if _, err := uuid.Parse(job.ID); err != nil {
		return Job{}, ErrNotFound
	}
	const query = `
UPDATE jobs
SET title = $1,
    company = $2,
    location = $3,
    link = $4,
    status = $5,
    notes = $6,
    date_applied = $7,
    resume = CASE WHEN $8::boolean THEN $9::text ELSE resume END,
    cover_letter = CASE WHEN $10::boolean THEN $11::text ELSE cover_letter END,
    updated_at = $12
WHERE id = $13
RETURNING ` + pgJobColumns

	updated, err := scanPGJob(r.DB.QueryRowContext(
		ctx,
		query,
		job.Title,
		job.Company,
		job.Location,
		job.Link,
		string(job.Status),
		job.Notes,
		nullTime(job.DateApplied),
		attachments.Resume,
		nullString(job.Resume),
		attachments.CoverLetter,
		nullString(job.CoverLetter),
		job.UpdatedAt,
		job.ID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return updated, nil
}

// Delete removes a job by id.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountReferences counts jobs holding reference in either attachment slot.
func (r *PGRepo) CountReferences(ctx context.Context, reference string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs WHERE resume = $1 OR cover_letter = $1`, reference,
	).Scan(&n)
	return n, err
}

// ListReferences returns the distinct attachment references held by any job.
func (r *PGRepo) ListReferences(ctx context.Context) ([]string, error) {
	const query = `
SELECT resume FROM jobs WHERE resume IS NOT NULL
UNION
SELECT cover_letter FROM jobs WHERE cover_letter IS NOT NULL`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func scanPGJob(row rowScanner) (Job, error) {
	var job Job
	var status string
	var dateApplied sql.NullTime
	var resume, coverLetter sql.NullString
	err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Company,
		&job.Location,
		&job.Link,
		&status,
		&job.Notes,
		&dateApplied,
		&resume,
		&coverLetter,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	job.Status = Status(status)
	if dateApplied.Valid {
		d := time.Date(dateApplied.Time.Year(), dateApplied.Time.Month(), dateApplied.Time.Day(), 0, 0, 0, 0, time.UTC)
		job.DateApplied = &d
	}
	if resume.Valid {
		job.Resume = &resume.String
	}
	if coverLetter.Valid {
		job.CoverLetter = &coverLetter.String
	}
	return job, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
