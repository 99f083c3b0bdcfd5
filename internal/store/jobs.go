package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/jobmargin/internal/costing"
)

// NewJob holds the fields of a job to create. Defaults are applied by the caller.
type NewJob struct {
	Name             string
	ClientName       string
	JobType          costing.JobType
	Status           costing.Status
	EstimatedRevenue float64
	ActualRevenue    float64
}

const jobColumns = `id, user_id, name, client_name, job_type, status, estimated_revenue, actual_revenue, created_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (costing.Job, error) {
	var (
		job         costing.Job
		jobType     string
		status      string
		createdAt   string
		completedAt sql.NullString
	)
	if err := row.Scan(
		&job.ID,
		&job.OwnerID,
		&job.Name,
		&job.ClientName,
		&jobType,
		&status,
		&job.EstimatedRevenue,
		&job.ActualRevenue,
		&createdAt,
		&completedAt,
	); err != nil {
		return costing.Job{}, err
	}

	job.JobType = costing.JobType(jobType)
	job.Status = costing.Status(status)

	var err error
	if job.CreatedAt, err = parseTime(createdAt); err != nil {
		return costing.Job{}, err
	}
	if completedAt.Valid && completedAt.String != "" {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return costing.Job{}, err
		}
		job.CompletedAt = &t
	}
	return job, nil
}

// ListJobs returns the owner's jobs, newest first.
func (s *Store) ListJobs(ctx context.Context, ownerID string) ([]costing.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]costing.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// GetJob returns one of the owner's jobs or ErrNotFound.
func (s *Store) GetJob(ctx context.Context, ownerID, jobID string) (costing.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE id = ? AND user_id = ?
	`, jobID, ownerID)

	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return costing.Job{}, ErrNotFound
	}
	if err != nil {
		return costing.Job{}, fmt.Errorf("query job: %w", err)
	}
	return job, nil
}

// CreateJob inserts a job owned by ownerID and returns the stored record.
func (s *Store) CreateJob(ctx context.Context, ownerID string, in NewJob) (costing.Job, error) {
	job := costing.Job{
		ID:               s.newID(),
		OwnerID:          ownerID,
		Name:             in.Name,
		ClientName:       in.ClientName,
		JobType:          in.JobType,
		Status:           in.Status,
		EstimatedRevenue: in.EstimatedRevenue,
		ActualRevenue:    in.ActualRevenue,
		CreatedAt:        s.now().UTC().Truncate(time.Microsecond),
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, user_id, name, client_name, job_type, status, estimated_revenue, actual_revenue, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		job.ID,
		job.OwnerID,
		job.Name,
		job.ClientName,
		string(job.JobType),
		string(job.Status),
		job.EstimatedRevenue,
		job.ActualRevenue,
		FormatTime(job.CreatedAt),
	); err != nil {
		return costing.Job{}, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// UpdateJobStatus sets a job's status. A nil completedAt leaves the stored completion time unchanged.
func (s *Store) UpdateJobStatus(ctx context.Context, ownerID, jobID string, status costing.Status, completedAt *time.Time) (costing.Job, error) {
	var completed any
	if completedAt != nil {
		completed = FormatTime(*completedAt)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs
		SET status = ?, completed_at = COALESCE(?, completed_at)
		WHERE id = ? AND user_id = ?
	`, string(status), completed, jobID, ownerID)
	if err != nil {
		return costing.Job{}, fmt.Errorf("update job status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return costing.Job{}, fmt.Errorf("update job status rows affected: %w", err)
	}
	if n == 0 {
		return costing.Job{}, ErrNotFound
	}
	return s.GetJob(ctx, ownerID, jobID)
}

// CountJobs returns how many jobs the owner has.
func (s *Store) CountJobs(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE user_id = ?`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}
