package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// sqliteTimeLayout is fixed-width so text comparison orders timestamps chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepo implements Repo on a single-file SQLite database.
type SQLiteRepo struct {
	DB *sqlx.DB
}

// NewSQLiteRepo wraps an open modernc sqlite handle.
func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{DB: sqlx.NewDb(db, "sqlite")}
}

type sqliteJobRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Company     string         `db:"company"`
	Location    string         `db:"location"`
	Link        string         `db:"link"`
	Status      string         `db:"status"`
	Notes       string         `db:"notes"`
	DateApplied sql.NullString `db:"date_applied"`
	Resume      sql.NullString `db:"resume"`
	CoverLetter sql.NullString `db:"cover_letter"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

func toSQLiteRow(job Job) sqliteJobRow {
	row := sqliteJobRow{
		ID:        job.ID,
		Title:     job.Title,
		Company:   job.Company,
		Location:  job.Location,
		Link:      job.Link,
		Status:    string(job.Status),
		Notes:     job.Notes,
		CreatedAt: job.CreatedAt.UTC().Format(sqliteTimeLayout),
		UpdatedAt: job.UpdatedAt.UTC().Format(sqliteTimeLayout),
	}
	if job.DateApplied != nil {
		row.DateApplied = sql.NullString{String: FormatDate(*job.DateApplied), Valid: true}
	}
	if job.Resume != nil {
		row.Resume = sql.NullString{String: *job.Resume, Valid: true}
	}
	if job.CoverLetter != nil {
		row.CoverLetter = sql.NullString{String: *job.CoverLetter, Valid: true}
	}
	return row
}

func (row sqliteJobRow) job() (Job, error) {
	job := Job{
		ID:       row.ID,
		Title:    row.Title,
		Company:  row.Company,
		Location: row.Location,
		Link:     row.Link,
		Status:   Status(row.Status),
		Notes:    row.Notes,
	}
	var err error
	if job.CreatedAt, err = time.Parse(sqliteTimeLayout, row.CreatedAt); err != nil {
		return Job{}, fmt.Errorf("parse created_at for %s: %w", row.ID, err)
	}
	if job.UpdatedAt, err = time.Parse(sqliteTimeLayout, row.UpdatedAt); err != nil {
		return Job{}, fmt.Errorf("parse updated_at for %s: %w", row.ID, err)
	}
	if row.DateApplied.Valid {
		d, err := ParseDate(row.DateApplied.String)
		if err != nil {
			return Job{}, fmt.Errorf("parse date_applied for %s: %w", row.ID, err)
		}
		job.DateApplied = &d
	}
	if row.Resume.Valid {
		s := row.Resume.String
		job.Resume = &s
	}
	if row.CoverLetter.Valid {
		s := row.CoverLetter.String
		job.CoverLetter = &s
	}
	return job, nil
}

// Create inserts job under a fresh uuid.
func (r *SQLiteRepo) Create(ctx context.Context, job Job) (Job, error) {
	job.ID = uuid.NewString()
	_, err := r.DB.NamedExecContext(ctx, `
INSERT INTO jobs (id, title, company, location, link, status, notes, date_applied, resume, cover_letter, created_at, updated_at)
VALUES (:id, :title, :company, :location, :link, :status, :notes, :date_applied, :resume, :cover_letter, :created_at, :updated_at)`,
		toSQLiteRow(job))
	if err != nil {
		return Job{}, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// List returns every job, newest application first and undated jobs last.
func (r *SQLiteRepo) List(ctx context.Context) ([]Job, error) {
	var rows []sqliteJobRow
	err := r.DB.SelectContext(ctx, &rows, `
SELECT * FROM jobs
ORDER BY date_applied IS NULL, date_applied DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select jobs: %w", err)
	}
	out := make([]Job, 0, len(rows))
	for _, row := range rows {
		job, err := row.job()
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, nil
}

// GetByID fetches a job by id.
func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (Job, error) {
	var row sqliteJobRow
	if err := r.DB.GetContext(ctx, &row, `SELECT * FROM jobs WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, fmt.Errorf("get job %s: %w", id, err)
	}
	return row.job()
}

type sqliteUpdateArgs struct {
	sqliteJobRow
	SetResume      bool `db:"set_resume"`
	SetCoverLetter bool `db:"set_cover_letter"`
}

// Update overwrites the scalar columns and the attachment columns named in attachments,
// returning the row as stored. A statement matching no row yields ErrNotFound.
func (r *SQLiteRepo) Update(ctx context.Context, job Job, attachments AttachmentSet) (Job, error) {
	args := sqliteUpdateArgs{
		sqliteJobRow:   toSQLiteRow(job),
		SetResume:      attachments.Resume,
		SetCoverLetter: attachments.CoverLetter,
	}
	res, err := r.DB.NamedExecContext(ctx, `
UPDATE jobs
SET title = :title, company = :company, location = :location, link = :link, status = :status,
    notes = :notes, date_applied = :date_applied,
    resume = CASE WHEN :set_resume THEN :resume ELSE resume END,
    cover_letter = CASE WHEN :set_cover_letter THEN :cover_letter ELSE cover_letter END,
    updated_at = :updated_at
WHERE id = :id`, args)
	if err != nil {
		return Job{}, fmt.Errorf("update job %s: %w", job.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Job{}, err
	}
	if affected == 0 {
		return Job{}, ErrNotFound
	}
	return r.GetByID(ctx, job.ID)
}

// Delete removes a job by id.
func (r *SQLiteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
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
func (r *SQLiteRepo) CountReferences(ctx context.Context, reference string) (int, error) {
	var n int
	err := r.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM jobs WHERE resume = ? OR cover_letter = ?`, reference, reference)
	return n, err
}

// ListReferences returns the distinct attachment references held by any job.
func (r *SQLiteRepo) ListReferences(ctx context.Context) ([]string, error) {
	var out []string
	err := r.DB.SelectContext(ctx, &out, `
SELECT resume FROM jobs WHERE resume IS NOT NULL
UNION
SELECT cover_letter FROM jobs WHERE cover_letter IS NOT NULL`)
	return out, err
}
