package store

import (
	"context"
	"fmt"

	"github.com/Simplici0/jobmargin/internal/costing"
)

// NewLaborEntry holds the fields of a labor entry to create.
type NewLaborEntry struct {
	JobID      string
	TechName   string
	Hours      float64
	HourlyRate float64
	Date       string
}

// NewMaterialEntry holds the fields of a material entry to create.
type NewMaterialEntry struct {
	JobID       string
	Description string
	Cost        float64
	Date        string
}

// ListLaborEntries returns the owner's labor entries for jobID, or for every job when jobID is empty.
func (s *Store) ListLaborEntries(ctx context.Context, ownerID, jobID string) ([]costing.LaborEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, user_id, tech_name, hours, hourly_rate, date
		FROM labor_entries
		WHERE user_id = ? AND (? = '' OR job_id = ?)
		ORDER BY date ASC, rowid ASC
	`, ownerID, jobID, jobID)
	if err != nil {
		return nil, fmt.Errorf("query labor entries: %w", err)
	}
	defer rows.Close()

	entries := make([]costing.LaborEntry, 0)
	for rows.Next() {
		var e costing.LaborEntry
		if err := rows.Scan(&e.ID, &e.JobID, &e.OwnerID, &e.TechName, &e.Hours, &e.HourlyRate, &e.Date); err != nil {
			return nil, fmt.Errorf("scan labor entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate labor entries: %w", err)
	}
	return entries, nil
}

// ListMaterialEntries returns the owner's material entries for jobID, or for every job when jobID is empty.
func (s *Store) ListMaterialEntries(ctx context.Context, ownerID, jobID string) ([]costing.MaterialEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, user_id, description, cost, date
		FROM material_entries
		WHERE user_id = ? AND (? = '' OR job_id = ?)
		ORDER BY date ASC, rowid ASC
	`, ownerID, jobID, jobID)
	if err != nil {
		return nil, fmt.Errorf("query material entries: %w", err)
	}
	defer rows.Close()

	entries := make([]costing.MaterialEntry, 0)
	for rows.Next() {
		var e costing.MaterialEntry
		if err := rows.Scan(&e.ID, &e.JobID, &e.OwnerID, &e.Description, &e.Cost, &e.Date); err != nil {
			return nil, fmt.Errorf("scan material entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate material entries: %w", err)
	}
	return entries, nil
}

// CreateLaborEntry inserts a labor entry. It returns ErrNotFound unless the job belongs to ownerID.
func (s *Store) CreateLaborEntry(ctx context.Context, ownerID string, in NewLaborEntry) (costing.LaborEntry, error) {
	e := costing.LaborEntry{
		ID:         s.newID(),
		JobID:      in.JobID,
		OwnerID:    ownerID,
		TechName:   in.TechName,
		Hours:      in.Hours,
		HourlyRate: in.HourlyRate,
		Date:       in.Date,
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO labor_entries (id, job_id, user_id, tech_name, hours, hourly_rate, date)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM jobs WHERE id = ? AND user_id = ?)
	`, e.ID, e.JobID, e.OwnerID, e.TechName, e.Hours, e.HourlyRate, e.Date, e.JobID, ownerID)
	if err != nil {
		return costing.LaborEntry{}, fmt.Errorf("insert labor entry: %w", err)
	}
	if err := requireOneRow(res, "insert labor entry"); err != nil {
		return costing.LaborEntry{}, err
	}
	return e, nil
}

// CreateMaterialEntry inserts a material entry. It returns ErrNotFound unless the job belongs to ownerID.
func (s *Store) CreateMaterialEntry(ctx context.Context, ownerID string, in NewMaterialEntry) (costing.MaterialEntry, error) {
	e := costing.MaterialEntry{
		ID:          s.newID(),
		JobID:       in.JobID,
		OwnerID:     ownerID,
		Description: in.Description,
		Cost:        in.Cost,
		Date:        in.Date,
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO material_entries (id, job_id, user_id, description, cost, date)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM jobs WHERE id = ? AND user_id = ?)
	`, e.ID, e.JobID, e.OwnerID, e.Description, e.Cost, e.Date, e.JobID, ownerID)
	if err != nil {
		return costing.MaterialEntry{}, fmt.Errorf("insert material entry: %w", err)
	}
	if err := requireOneRow(res, "insert material entry"); err != nil {
		return costing.MaterialEntry{}, err
	}
	return e, nil
}

// DeleteLaborEntry removes one of the owner's labor entries on jobID.
func (s *Store) DeleteLaborEntry(ctx context.Context, ownerID, jobID, entryID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM labor_entries
		WHERE id = ? AND job_id = ? AND user_id = ?
	`, entryID, jobID, ownerID)
	if err != nil {
		return fmt.Errorf("delete labor entry: %w", err)
	}
	return requireOneRow(res, "delete labor entry")
}

// DeleteMaterialEntry removes one of the owner's material entries on jobID.
func (s *Store) DeleteMaterialEntry(ctx context.Context, ownerID, jobID, entryID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM material_entries
		WHERE id = ? AND job_id = ? AND user_id = ?
	`, entryID, jobID, ownerID)
	if err != nil {
		return fmt.Errorf("delete material entry: %w", err)
	}
	return requireOneRow(res, "delete material entry")
}

type rowsAffecter interface {
	RowsAffected() (int64, error)
}

func requireOneRow(res rowsAffecter, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
