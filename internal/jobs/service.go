// Package jobs is the use-case layer shared by the REST handlers and the RPC tools.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/jobmargin/internal/costing"
	"github.com/Simplici0/jobmargin/internal/store"
)

// ErrNotFound reports an absent or foreign job or entry.
var ErrNotFound = store.ErrNotFound

// ErrNoOwner is returned when an operation is attempted without an owner id.
var ErrNoOwner = errors.New("owner id is required")

// Store is the record store as seen by the service.
type Store interface {
	ListJobs(ctx context.Context, ownerID string) ([]costing.Job, error)
	GetJob(ctx context.Context, ownerID, jobID string) (costing.Job, error)
	ListLaborEntries(ctx context.Context, ownerID, jobID string) ([]costing.LaborEntry, error)
	ListMaterialEntries(ctx context.Context, ownerID, jobID string) ([]costing.MaterialEntry, error)
	CreateJob(ctx context.Context, ownerID string, in store.NewJob) (costing.Job, error)
	CreateLaborEntry(ctx context.Context, ownerID string, in store.NewLaborEntry) (costing.LaborEntry, error)
	CreateMaterialEntry(ctx context.Context, ownerID string, in store.NewMaterialEntry) (costing.MaterialEntry, error)
	DeleteLaborEntry(ctx context.Context, ownerID, jobID, entryID string) error
	DeleteMaterialEntry(ctx context.Context, ownerID, jobID, entryID string) error
	UpdateJobStatus(ctx context.Context, ownerID, jobID string, status costing.Status, completedAt *time.Time) (costing.Job, error)
}

// Service composes the record store with the margin engine.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService returns a Service. A nil now uses time.Now.
func NewService(s Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: s, now: now}
}

// ListWithMargin loads the owner's jobs and line items concurrently and computes every job's margin.
// Jobs are returned newest first.
func (s *Service) ListWithMargin(ctx context.Context, ownerID string) ([]costing.JobWithMargin, error) {
	if ownerID == "" {
		return nil, ErrNoOwner
	}

	var (
		jobs      []costing.Job
		labor     []costing.LaborEntry
		materials []costing.MaterialEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = s.store.ListJobs(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		labor, err = s.store.ListLaborEntries(gctx, ownerID, "")
		return err
	})
	g.Go(func() error {
		var err error
		materials, err = s.store.ListMaterialEntries(gctx, ownerID, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}

	return costing.ComputeAll(jobs, labor, materials), nil
}

// Stats is the dashboard summary. Percentages are rounded to one decimal.
type Stats struct {
	AvgMargin        float64 `json:"avg_margin"`
	ActiveJobs       int     `json:"active_jobs"`
	FlaggedJobs      int     `json:"flagged_jobs"`
	EstimateAccuracy float64 `json:"estimate_accuracy"`
	TotalJobs        int     `json:"total_jobs"`
}

// StatsFromSummary shapes an aggregate for the wire.
func StatsFromSummary(s costing.Summary) Stats {
	return Stats{
		AvgMargin:        costing.Round1(s.AverageMargin),
		ActiveJobs:       s.ActiveCount,
		FlaggedJobs:      s.DangerCount,
		EstimateAccuracy: costing.Round1(s.AverageEstimateAccuracy),
		TotalJobs:        s.Count,
	}
}

// Stats aggregates every job the owner has.
func (s *Service) Stats(ctx context.Context, ownerID string) (Stats, error) {
	all, err := s.ListWithMargin(ctx, ownerID)
	if err != nil {
		return Stats{}, err
	}
	return StatsFromSummary(costing.Summarize(all)), nil
}

// Detail is one job with its line items.
type Detail struct {
	Job       costing.JobWithMargin   `json:"job"`
	Tier      costing.Tier            `json:"tier"`
	TierToken string                  `json:"tier_token"`
	Labor     []costing.LaborEntry    `json:"labor"`
	Materials []costing.MaterialEntry `json:"materials"`
}

// JobDetail loads one job and its entries.
func (s *Service) JobDetail(ctx context.Context, ownerID, jobID string) (Detail, error) {
	if ownerID == "" {
		return Detail{}, ErrNoOwner
	}

	var (
		job       costing.Job
		labor     []costing.LaborEntry
		materials []costing.MaterialEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		job, err = s.store.GetJob(gctx, ownerID, jobID)
		return err
	})
	g.Go(func() error {
		var err error
		labor, err = s.store.ListLaborEntries(gctx, ownerID, jobID)
		return err
	})
	g.Go(func() error {
		var err error
		materials, err = s.store.ListMaterialEntries(gctx, ownerID, jobID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Detail{}, fmt.Errorf("load job %s: %w", jobID, err)
	}

	computed := costing.ComputeMargin(job, labor, materials)
	tier := costing.Classify(computed.Margin)
	return Detail{
		Job:       computed,
		Tier:      tier,
		TierToken: tier.Token(),
		Labor:     labor,
		Materials: materials,
	}, nil
}

// SetStatus changes a job's status. Moving to completed stamps the completion time.
func (s *Service) SetStatus(ctx context.Context, ownerID, jobID string, status costing.Status) (costing.Job, error) {
	if ownerID == "" {
		return costing.Job{}, ErrNoOwner
	}
	if !status.Valid() {
		return costing.Job{}, &ValidationError{Field: "status", Message: "status must be one of active, completed, invoiced"}
	}

	var completedAt *time.Time
	if status == costing.StatusCompleted {
		now := s.now().UTC()
		completedAt = &now
	}

	job, err := s.store.UpdateJobStatus(ctx, ownerID, jobID, status, completedAt)
	if err != nil {
		return costing.Job{}, fmt.Errorf("set job status: %w", err)
	}
	return job, nil
}
