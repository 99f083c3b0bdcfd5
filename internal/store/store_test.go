package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/jobmargin/internal/costing"
	"github.com/Simplici0/jobmargin/internal/db"
	"github.com/Simplici0/jobmargin/internal/migrations"
)

type tickingClock struct {
	t time.Time
}

func (c *tickingClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "store-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	clock := &tickingClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	seq := 0
	return New(database,
		WithClock(clock.now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		}),
	)
}

func createJob(t *testing.T, s *Store, owner, name string) costing.Job {
	t.Helper()
	job, err := s.CreateJob(context.Background(), owner, NewJob{
		Name:             name,
		JobType:          costing.JobTypeResidential,
		Status:           costing.StatusActive,
		EstimatedRevenue: 1000,
	})
	require.NoError(t, err)
	return job
}

func TestCreateAndGetJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateJob(ctx, "owner-a", NewJob{
		Name:             "Johnson Residence",
		ClientName:       "Bob Johnson",
		JobType:          costing.JobTypeCommercial,
		Status:           costing.StatusCompleted,
		EstimatedRevenue: 3200,
		ActualRevenue:    3100,
	})
	require.NoError(t, err)
	assert.Equal(t, "id-001", created.ID)
	assert.Equal(t, "owner-a", created.OwnerID)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 1, 0, 0, time.UTC), created.CreatedAt)

	got, err := s.GetJob(ctx, "owner-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Nil(t, got.CompletedAt)
}

func TestListJobs_NewestFirst(t *testing.T) {
	s := newTestStore(t)

	createJob(t, s, "owner-a", "first")
	createJob(t, s, "owner-a", "second")
	createJob(t, s, "owner-a", "third")

	jobs, err := s.ListJobs(context.Background(), "owner-a")
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{jobs[0].Name, jobs[1].Name, jobs[2].Name})
}

func TestOwnershipIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mine := createJob(t, s, "owner-a", "mine")
	theirs := createJob(t, s, "owner-b", "theirs")

	_, err := s.CreateLaborEntry(ctx, "owner-a", NewLaborEntry{JobID: mine.ID, TechName: "Mike", Hours: 2, HourlyRate: 50, Date: "2025-03-01"})
	require.NoError(t, err)
	_, err = s.CreateMaterialEntry(ctx, "owner-b", NewMaterialEntry{JobID: theirs.ID, Description: "Copper", Cost: 90, Date: "2025-03-01"})
	require.NoError(t, err)

	jobs, err := s.ListJobs(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, mine.ID, jobs[0].ID)

	_, err = s.GetJob(ctx, "owner-a", theirs.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Filtering by another owner's job id yields nothing.
	materials, err := s.ListMaterialEntries(ctx, "owner-a", theirs.ID)
	require.NoError(t, err)
	assert.Empty(t, materials)

	labor, err := s.ListLaborEntries(ctx, "owner-b", "")
	require.NoError(t, err)
	assert.Empty(t, labor)

	_, err = s.CreateLaborEntry(ctx, "owner-a", NewLaborEntry{JobID: theirs.ID, TechName: "Mike", Hours: 1, HourlyRate: 1, Date: "2025-03-01"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.CreateMaterialEntry(ctx, "owner-a", NewMaterialEntry{JobID: theirs.ID, Description: "x", Cost: 1, Date: "2025-03-01"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateJobStatus(ctx, "owner-a", theirs.ID, costing.StatusInvoiced, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	theirMaterials, err := s.ListMaterialEntries(ctx, "owner-b", "")
	require.NoError(t, err)
	require.Len(t, theirMaterials, 1)
	err = s.DeleteMaterialEntry(ctx, "owner-a", theirs.ID, theirMaterials[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := s.CountJobs(ctx, "owner-b")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestListEntries_FilterByJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createJob(t, s, "owner-a", "a")
	b := createJob(t, s, "owner-a", "b")

	_, err := s.CreateLaborEntry(ctx, "owner-a", NewLaborEntry{JobID: a.ID, TechName: "late", Hours: 1, HourlyRate: 10, Date: "2025-03-05"})
	require.NoError(t, err)
	_, err = s.CreateLaborEntry(ctx, "owner-a", NewLaborEntry{JobID: a.ID, TechName: "early", Hours: 1, HourlyRate: 10, Date: "2025-03-02"})
	require.NoError(t, err)
	_, err = s.CreateLaborEntry(ctx, "owner-a", NewLaborEntry{JobID: b.ID, TechName: "other", Hours: 1, HourlyRate: 10, Date: "2025-03-03"})
	require.NoError(t, err)

	forA, err := s.ListLaborEntries(ctx, "owner-a", a.ID)
	require.NoError(t, err)
	require.Len(t, forA, 2)
	assert.Equal(t, "early", forA[0].TechName)
	assert.Equal(t, "late", forA[1].TechName)

	all, err := s.ListLaborEntries(ctx, "owner-a", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := createJob(t, s, "owner-a", "job")
	other := createJob(t, s, "owner-a", "other")

	labor, err := s.CreateLaborEntry(ctx, "owner-a", NewLaborEntry{JobID: job.ID, TechName: "Mike", Hours: 1, HourlyRate: 10, Date: "2025-03-02"})
	require.NoError(t, err)
	material, err := s.CreateMaterialEntry(ctx, "owner-a", NewMaterialEntry{JobID: job.ID, Description: "Filter", Cost: 12.5, Date: "2025-03-02"})
	require.NoError(t, err)

	// Entry ids are scoped to their job.
	assert.ErrorIs(t, s.DeleteLaborEntry(ctx, "owner-a", other.ID, labor.ID), ErrNotFound)

	require.NoError(t, s.DeleteLaborEntry(ctx, "owner-a", job.ID, labor.ID))
	assert.ErrorIs(t, s.DeleteLaborEntry(ctx, "owner-a", job.ID, labor.ID), ErrNotFound)

	require.NoError(t, s.DeleteMaterialEntry(ctx, "owner-a", job.ID, material.ID))

	remaining, err := s.ListMaterialEntries(ctx, "owner-a", job.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestUpdateJobStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := createJob(t, s, "owner-a", "job")
	completedAt := time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC)

	done, err := s.UpdateJobStatus(ctx, "owner-a", job.ID, costing.StatusCompleted, &completedAt)
	require.NoError(t, err)
	assert.Equal(t, costing.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, completedAt, *done.CompletedAt)

	// Any status may follow any other; the completion time survives.
	reopened, err := s.UpdateJobStatus(ctx, "owner-a", job.ID, costing.StatusActive, nil)
	require.NoError(t, err)
	assert.Equal(t, costing.StatusActive, reopened.Status)
	require.NotNil(t, reopened.CompletedAt)
	assert.Equal(t, completedAt, *reopened.CompletedAt)

	_, err = s.UpdateJobStatus(ctx, "owner-a", "missing", costing.StatusActive, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
