// Package seed loads a demo HVAC job book for a development owner.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/jobmargin/internal/costing"
	"github.com/Simplici0/jobmargin/internal/store"
)

// Config contains the values required by the demo seed.
type Config struct {
	OwnerID string
	// Now anchors created and completed timestamps. Zero means time.Now.
	Now time.Time
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped bool
}

type demoLabor struct {
	tech  string
	hours float64
	rate  float64
	date  string
}

type demoMaterial struct {
	description string
	cost        float64
	date        string
}

type demoJob struct {
	name          string
	client        string
	jobType       costing.JobType
	status        costing.Status
	estimated     float64
	actual        float64
	completedDays int // days before Now; 0 means not completed
	labor         []demoLabor
	materials     []demoMaterial
}

var demoJobs = []demoJob{
	{
		name: "Residential AC Install - Johnson", client: "Mike Johnson",
		jobType: costing.JobTypeResidential, status: costing.StatusCompleted,
		estimated: 3200, actual: 3100, completedDays: 7,
		labor: []demoLabor{
			{"Tom Bradley", 6, 65, "2025-02-10"},
			{"Jake Lee", 4, 55, "2025-02-10"},
		},
		materials: []demoMaterial{
			{"Carrier 3-ton AC Unit", 1100, "2025-02-10"},
			{"Copper lineset 25ft", 145, "2025-02-10"},
			{"Misc fittings & supplies", 55, "2025-02-10"},
		},
	},
	{
		name: "Commercial HVAC - Riverside Office", client: "Riverside Properties LLC",
		jobType: costing.JobTypeCommercial, status: costing.StatusActive,
		estimated: 12000, actual: 11500,
		labor: []demoLabor{
			{"Tom Bradley", 16, 75, "2025-02-15"},
			{"Jake Lee", 14, 65, "2025-02-15"},
			{"Maria Santos", 10, 60, "2025-02-16"},
		},
		materials: []demoMaterial{
			{"Commercial RTU 10-ton", 3800, "2025-02-15"},
			{"Ductwork materials", 950, "2025-02-15"},
			{"Controls & thermostat", 420, "2025-02-16"},
		},
	},
	{
		name: "Heat Pump Replacement - Martinez", client: "Rosa Martinez",
		jobType: costing.JobTypeResidential, status: costing.StatusActive,
		estimated: 4500, actual: 4200,
		labor: []demoLabor{
			{"Tom Bradley", 8, 70, "2025-02-18"},
			{"Jake Lee", 6, 60, "2025-02-18"},
		},
		materials: []demoMaterial{
			{"Trane heat pump system", 1650, "2025-02-18"},
			{"Air handler", 480, "2025-02-18"},
			{"Installation supplies", 95, "2025-02-18"},
		},
	},
	{
		// Labor overrun puts this one in the danger tier.
		name: "Ductwork Repair - Williams", client: "David Williams",
		jobType: costing.JobTypeResidential, status: costing.StatusCompleted,
		estimated: 2800, actual: 2600, completedDays: 3,
		labor: []demoLabor{
			{"Tom Bradley", 14, 75, "2025-02-20"},
			{"Jake Lee", 12, 65, "2025-02-20"},
			{"Maria Santos", 8, 60, "2025-02-21"},
		},
		materials: []demoMaterial{
			{"Sheet metal ductwork", 320, "2025-02-20"},
			{"Insulation wrap", 85, "2025-02-20"},
			{"Mastic sealant & tape", 45, "2025-02-21"},
		},
	},
	{
		name: "Commercial Install - Tech Park", client: "Tech Park Development",
		jobType: costing.JobTypeCommercial, status: costing.StatusInvoiced,
		estimated: 18000, actual: 17500,
		labor: []demoLabor{
			{"Tom Bradley", 24, 80, "2025-02-05"},
			{"Jake Lee", 20, 70, "2025-02-05"},
			{"Maria Santos", 16, 65, "2025-02-06"},
		},
		materials: []demoMaterial{
			{"Two 15-ton RTU units", 7800, "2025-02-05"},
			{"BAS controls system", 1200, "2025-02-05"},
			{"Ductwork & accessories", 680, "2025-02-06"},
		},
	},
}

// Run seeds the demo jobs for cfg.OwnerID unless that owner already has jobs.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	if cfg.OwnerID == "" {
		return Stats{}, errors.New("seed owner id is required")
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE user_id = ? LIMIT 1)`, cfg.OwnerID).Scan(&exists); err != nil {
		_ = tx.Rollback()
		return Stats{}, fmt.Errorf("check seed owner jobs: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return Stats{Skipped: true}, nil
	}

	stats := Stats{}
	for i, j := range demoJobs {
		// One second apart so newest-first ordering is stable.
		createdAt := now.Add(time.Duration(i-len(demoJobs)) * time.Second)
		if err := insertJob(ctx, tx, cfg.OwnerID, j, createdAt, now, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}
	return stats, nil
}

func insertJob(ctx context.Context, tx *sql.Tx, ownerID string, j demoJob, createdAt, now time.Time, stats *Stats) error {
	jobID := uuid.NewString()

	var completedAt any
	if j.completedDays > 0 {
		completedAt = store.FormatTime(now.AddDate(0, 0, -j.completedDays))
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO jobs (id, user_id, name, client_name, job_type, status, estimated_revenue, actual_revenue, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, jobID, ownerID, j.name, j.client, string(j.jobType), string(j.status), j.estimated, j.actual, store.FormatTime(createdAt), completedAt); err != nil {
		return fmt.Errorf("insert demo job %q: %w", j.name, err)
	}
	stats.Inserts++

	for _, l := range j.labor {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO labor_entries (id, job_id, user_id, tech_name, hours, hourly_rate, date)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), jobID, ownerID, l.tech, l.hours, l.rate, l.date); err != nil {
			return fmt.Errorf("insert demo labor for %q: %w", j.name, err)
		}
		stats.Inserts++
	}

	for _, m := range j.materials {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO material_entries (id, job_id, user_id, description, cost, date)
			VALUES (?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), jobID, ownerID, m.description, m.cost, m.date); err != nil {
			return fmt.Errorf("insert demo material for %q: %w", j.name, err)
		}
		stats.Inserts++
	}
	return nil
}
