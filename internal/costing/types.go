package costing

import "time"

// JobType is the category of work a job represents.
type JobType string

const (
	JobTypeResidential JobType = "residential"
	JobTypeCommercial  JobType = "commercial"
)

// Valid reports whether t is one of the known job types.
func (t JobType) Valid() bool {
	return t == JobTypeResidential || t == JobTypeCommercial
}

// Status is the lifecycle state of a job. Transitions between statuses are not constrained.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusInvoiced  Status = "invoiced"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusInvoiced:
		return true
	}
	return false
}

// Closed reports whether the job is past the active phase.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusInvoiced
}

// Job is a unit of billable work owned by a single contractor account.
type Job struct {
	ID               string     `json:"id"`
	OwnerID          string     `json:"user_id"`
	Name             string     `json:"name"`
	ClientName       string     `json:"client_name"`
	JobType          JobType    `json:"job_type"`
	Status           Status     `json:"status"`
	EstimatedRevenue float64    `json:"estimated_revenue"`
	ActualRevenue    float64    `json:"actual_revenue"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// RevenueUsed returns the best known revenue: actual revenue once recorded, the estimate otherwise.
func (j Job) RevenueUsed() float64 {
	if j.ActualRevenue > 0 {
		return j.ActualRevenue
	}
	return j.EstimatedRevenue
}

// LaborEntry records hours a technician spent on a job. Date is a calendar day (YYYY-MM-DD).
type LaborEntry struct {
	ID         string  `json:"id"`
	JobID      string  `json:"job_id"`
	OwnerID    string  `json:"user_id"`
	TechName   string  `json:"tech_name"`
	Hours      float64 `json:"hours"`
	HourlyRate float64 `json:"hourly_rate"`
	Date       string  `json:"date"`
}

// Cost is hours times hourly rate.
func (e LaborEntry) Cost() float64 {
	return e.Hours * e.HourlyRate
}

// MaterialEntry records a material purchase charged to a job.
type MaterialEntry struct {
	ID          string  `json:"id"`
	JobID       string  `json:"job_id"`
	OwnerID     string  `json:"user_id"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Date        string  `json:"date"`
}

// JobWithMargin is a job plus its derived financials. It is a view, recomputed on every read.
type JobWithMargin struct {
	Job
	TotalLaborCost    float64 `json:"total_labor_cost"`
	TotalMaterialCost float64 `json:"total_material_cost"`
	TotalCost         float64 `json:"total_cost"`
	Margin            float64 `json:"margin"`
	MarginDanger      bool    `json:"margin_danger"`
	EstimateAccuracy  float64 `json:"estimate_accuracy"`
}
