package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Simplici0/jobmargin/internal/costing"
	"github.com/Simplici0/jobmargin/internal/store"
)

// fakeStore is an in-memory Store with owner scoping and optional injected failure.
type fakeStore struct {
	mu        sync.Mutex
	jobs      []costing.Job
	labor     []costing.LaborEntry
	materials []costing.MaterialEntry
	seq       int
	now       time.Time
	err       error

	lastCompletedAt *time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) ListJobs(_ context.Context, ownerID string) ([]costing.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []costing.Job{}
	for _, j := range f.jobs {
		if j.OwnerID == ownerID {
			out = append(out, j)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (f *fakeStore) GetJob(_ context.Context, ownerID, jobID string) (costing.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return costing.Job{}, f.err
	}
	for _, j := range f.jobs {
		if j.ID == jobID && j.OwnerID == ownerID {
			return j, nil
		}
	}
	return costing.Job{}, store.ErrNotFound
}

func (f *fakeStore) ownsJob(ownerID, jobID string) bool {
	for _, j := range f.jobs {
		if j.ID == jobID && j.OwnerID == ownerID {
			return true
		}
	}
	return false
}

func (f *fakeStore) ListLaborEntries(_ context.Context, ownerID, jobID string) ([]costing.LaborEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []costing.LaborEntry{}
	for _, e := range f.labor {
		if e.OwnerID == ownerID && (jobID == "" || e.JobID == jobID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ListMaterialEntries(_ context.Context, ownerID, jobID string) ([]costing.MaterialEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []costing.MaterialEntry{}
	for _, e := range f.materials {
		if e.OwnerID == ownerID && (jobID == "" || e.JobID == jobID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateJob(_ context.Context, ownerID string, in store.NewJob) (costing.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return costing.Job{}, f.err
	}
	f.now = f.now.Add(time.Minute)
	job := costing.Job{
		ID:               f.nextID("job"),
		OwnerID:          ownerID,
		Name:             in.Name,
		ClientName:       in.ClientName,
		JobType:          in.JobType,
		Status:           in.Status,
		EstimatedRevenue: in.EstimatedRevenue,
		ActualRevenue:    in.ActualRevenue,
		CreatedAt:        f.now,
	}
	f.jobs = append(f.jobs, job)
	return job, nil
}

func (f *fakeStore) CreateLaborEntry(_ context.Context, ownerID string, in store.NewLaborEntry) (costing.LaborEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return costing.LaborEntry{}, f.err
	}
	if !f.ownsJob(ownerID, in.JobID) {
		return costing.LaborEntry{}, store.ErrNotFound
	}
	e := costing.LaborEntry{
		ID:         f.nextID("labor"),
		JobID:      in.JobID,
		OwnerID:    ownerID,
		TechName:   in.TechName,
		Hours:      in.Hours,
		HourlyRate: in.HourlyRate,
		Date:       in.Date,
	}
	f.labor = append(f.labor, e)
	return e, nil
}

func (f *fakeStore) CreateMaterialEntry(_ context.Context, ownerID string, in store.NewMaterialEntry) (costing.MaterialEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return costing.MaterialEntry{}, f.err
	}
	if !f.ownsJob(ownerID, in.JobID) {
		return costing.MaterialEntry{}, store.ErrNotFound
	}
	e := costing.MaterialEntry{
		ID:          f.nextID("material"),
		JobID:       in.JobID,
		OwnerID:     ownerID,
		Description: in.Description,
		Cost:        in.Cost,
		Date:        in.Date,
	}
	f.materials = append(f.materials, e)
	return e, nil
}

func (f *fakeStore) DeleteLaborEntry(_ context.Context, ownerID, jobID, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, e := range f.labor {
		if e.ID == entryID && e.JobID == jobID && e.OwnerID == ownerID {
			f.labor = append(f.labor[:i], f.labor[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) DeleteMaterialEntry(_ context.Context, ownerID, jobID, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i, e := range f.materials {
		if e.ID == entryID && e.JobID == jobID && e.OwnerID == ownerID {
			f.materials = append(f.materials[:i], f.materials[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) UpdateJobStatus(_ context.Context, ownerID, jobID string, status costing.Status, completedAt *time.Time) (costing.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return costing.Job{}, f.err
	}
	f.lastCompletedAt = completedAt
	for i, j := range f.jobs {
		if j.ID == jobID && j.OwnerID == ownerID {
			f.jobs[i].Status = status
			if completedAt != nil {
				f.jobs[i].CompletedAt = completedAt
			}
			return f.jobs[i], nil
		}
	}
	return costing.Job{}, store.ErrNotFound
}
