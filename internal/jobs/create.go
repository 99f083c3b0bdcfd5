package jobs

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Simplici0/jobmargin/internal/costing"
	"github.com/Simplici0/jobmargin/internal/store"
)

// DateLayout is the calendar-day format of line item dates.
const DateLayout = "2006-01-02"

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// MaxAmount bounds every money, hour and rate input so cost sums stay finite.
const MaxAmount = 1e9

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid(field, "%s must be a non-negative number", field)
	}
	if v > MaxAmount {
		return invalid(field, "%s must not exceed 1000000000", field)
	}
	return nil
}

// CreateJobInput is a new job request. Zero values take the documented defaults.
type CreateJobInput struct {
	Name             string          `json:"name"`
	ClientName       string          `json:"client_name"`
	JobType          costing.JobType `json:"job_type"`
	Status           costing.Status  `json:"status"`
	EstimatedRevenue float64         `json:"estimated_revenue"`
	ActualRevenue    float64         `json:"actual_revenue"`
}

func (in CreateJobInput) normalize() (store.NewJob, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return store.NewJob{}, invalid("name", "name is required")
	}

	jobType := in.JobType
	if jobType == "" {
		jobType = costing.JobTypeResidential
	}
	if !jobType.Valid() {
		return store.NewJob{}, invalid("job_type", "job_type must be residential or commercial")
	}

	status := in.Status
	if status == "" {
		status = costing.StatusActive
	}
	if !status.Valid() {
		return store.NewJob{}, invalid("status", "status must be one of active, completed, invoiced")
	}

	if err := checkAmount("estimated_revenue", in.EstimatedRevenue); err != nil {
		return store.NewJob{}, err
	}
	if err := checkAmount("actual_revenue", in.ActualRevenue); err != nil {
		return store.NewJob{}, err
	}

	return store.NewJob{
		Name:             name,
		ClientName:       strings.TrimSpace(in.ClientName),
		JobType:          jobType,
		Status:           status,
		EstimatedRevenue: in.EstimatedRevenue,
		ActualRevenue:    in.ActualRevenue,
	}, nil
}

// CreateJob validates and stores a job. The returned record carries no margin fields.
func (s *Service) CreateJob(ctx context.Context, ownerID string, in CreateJobInput) (costing.Job, error) {
	if ownerID == "" {
		return costing.Job{}, ErrNoOwner
	}
	row, err := in.normalize()
	if err != nil {
		return costing.Job{}, err
	}

	job, err := s.store.CreateJob(ctx, ownerID, row)
	if err != nil {
		return costing.Job{}, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// AddLaborInput is a new labor entry request. An empty Date means today (UTC).
type AddLaborInput struct {
	JobID      string  `json:"job_id"`
	TechName   string  `json:"tech_name"`
	Hours      float64 `json:"hours"`
	HourlyRate float64 `json:"hourly_rate"`
	Date       string  `json:"date"`
}

// AddMaterialInput is a new material entry request. An empty Date means today (UTC).
type AddMaterialInput struct {
	JobID       string  `json:"job_id"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Date        string  `json:"date"`
}

func (s *Service) entryDate(v string) (string, error) {
	if v == "" {
		return s.now().UTC().Format(DateLayout), nil
	}
	if _, err := time.Parse(DateLayout, v); err != nil {
		return "", invalid("date", "date must be formatted YYYY-MM-DD")
	}
	return v, nil
}

// AddLabor records a labor entry on one of the owner's jobs.
func (s *Service) AddLabor(ctx context.Context, ownerID string, in AddLaborInput) (costing.LaborEntry, error) {
	if ownerID == "" {
		return costing.LaborEntry{}, ErrNoOwner
	}
	if strings.TrimSpace(in.JobID) == "" {
		return costing.LaborEntry{}, invalid("job_id", "job_id is required")
	}
	tech := strings.TrimSpace(in.TechName)
	if tech == "" {
		return costing.LaborEntry{}, invalid("tech_name", "tech_name is required")
	}
	if err := checkAmount("hours", in.Hours); err != nil {
		return costing.LaborEntry{}, err
	}
	if err := checkAmount("hourly_rate", in.HourlyRate); err != nil {
		return costing.LaborEntry{}, err
	}
	date, err := s.entryDate(in.Date)
	if err != nil {
		return costing.LaborEntry{}, err
	}

	entry, err := s.store.CreateLaborEntry(ctx, ownerID, store.NewLaborEntry{
		JobID:      in.JobID,
		TechName:   tech,
		Hours:      in.Hours,
		HourlyRate: in.HourlyRate,
		Date:       date,
	})
	if err != nil {
		return costing.LaborEntry{}, fmt.Errorf("add labor: %w", err)
	}
	return entry, nil
}

// AddMaterial records a material entry on one of the owner's jobs.
func (s *Service) AddMaterial(ctx context.Context, ownerID string, in AddMaterialInput) (costing.MaterialEntry, error) {
	if ownerID == "" {
		return costing.MaterialEntry{}, ErrNoOwner
	}
	if strings.TrimSpace(in.JobID) == "" {
		return costing.MaterialEntry{}, invalid("job_id", "job_id is required")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return costing.MaterialEntry{}, invalid("description", "description is required")
	}
	if err := checkAmount("cost", in.Cost); err != nil {
		return costing.MaterialEntry{}, err
	}
	date, err := s.entryDate(in.Date)
	if err != nil {
		return costing.MaterialEntry{}, err
	}

	entry, err := s.store.CreateMaterialEntry(ctx, ownerID, store.NewMaterialEntry{
		JobID:       in.JobID,
		Description: desc,
		Cost:        in.Cost,
		Date:        date,
	})
	if err != nil {
		return costing.MaterialEntry{}, fmt.Errorf("add material: %w", err)
	}
	return entry, nil
}

// RemoveLabor deletes a labor entry from one of the owner's jobs.
func (s *Service) RemoveLabor(ctx context.Context, ownerID, jobID, entryID string) error {
	if ownerID == "" {
		return ErrNoOwner
	}
	if err := s.store.DeleteLaborEntry(ctx, ownerID, jobID, entryID); err != nil {
		return fmt.Errorf("remove labor: %w", err)
	}
	return nil
}

// RemoveMaterial deletes a material entry from one of the owner's jobs.
func (s *Service) RemoveMaterial(ctx context.Context, ownerID, jobID, entryID string) error {
	if ownerID == "" {
		return ErrNoOwner
	}
	if err := s.store.DeleteMaterialEntry(ctx, ownerID, jobID, entryID); err != nil {
		return fmt.Errorf("remove material: %w", err)
	}
	return nil
}
