package jobs

import (
	"context"
	"maps"
	"slices"

	"github.com/Simplici0/jobmargin/internal/costing"
)

// ReportJob is one row of a monthly report. Money and margin are rounded to one decimal.
type ReportJob struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	ClientName string         `json:"client_name"`
	Status     costing.Status `json:"status"`
	Revenue    float64        `json:"revenue"`
	TotalCost  float64        `json:"total_cost"`
	Profit     float64        `json:"profit"`
	Margin     float64        `json:"margin"`
	Tier       costing.Tier   `json:"tier"`
}

// MonthlyReport is the profit and loss of the jobs created in one UTC month.
type MonthlyReport struct {
	Month         string       `json:"month"`
	JobCount      int          `json:"job_count"`
	TotalRevenue  float64      `json:"total_revenue"`
	TotalCost     float64      `json:"total_cost"`
	GrossProfit   float64      `json:"gross_profit"`
	AvgMargin     float64      `json:"avg_margin"`
	AvgMarginTier costing.Tier `json:"avg_margin_tier"`
	BestJob       *ReportJob   `json:"best_job,omitempty"`
	WorstJob      *ReportJob   `json:"worst_job,omitempty"`
	Jobs          []ReportJob  `json:"jobs"`
	Months        []MonthCount `json:"months"`
}

// MonthCount is one month that has jobs, for building a month picker.
type MonthCount struct {
	Month    string `json:"month"`
	JobCount int    `json:"job_count"`
}

// monthIndex lists the months that have jobs, newest first.
func monthIndex(all []costing.JobWithMargin) []MonthCount {
	groups := costing.GroupByMonth(all)
	keys := slices.Sorted(maps.Keys(groups))
	slices.Reverse(keys)

	out := make([]MonthCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthCount{Month: k, JobCount: len(groups[k])})
	}
	return out
}

func reportJob(j costing.JobWithMargin) ReportJob {
	revenue := j.RevenueUsed()
	return ReportJob{
		ID:         j.ID,
		Name:       j.Name,
		ClientName: j.ClientName,
		Status:     j.Status,
		Revenue:    costing.Round1(revenue),
		TotalCost:  costing.Round1(j.TotalCost),
		Profit:     costing.Round1(revenue - j.TotalCost),
		Margin:     costing.Round1(j.Margin),
		Tier:       costing.Classify(j.Margin),
	}
}

// BuildMonthlyReport buckets jobs by creation month and summarizes the requested one.
// Months indexes every month the owner has jobs in, whichever month is requested.
// The worst job is omitted when it is the same record as the best.
func BuildMonthlyReport(all []costing.JobWithMargin, month string) MonthlyReport {
	inMonth := costing.FilterByMonth(all, month)
	sum := costing.Summarize(inMonth)

	r := MonthlyReport{
		Month:         month,
		JobCount:      sum.Count,
		TotalRevenue:  costing.Round1(sum.TotalRevenue),
		TotalCost:     costing.Round1(sum.TotalCost),
		GrossProfit:   costing.Round1(sum.GrossProfit),
		AvgMargin:     costing.Round1(sum.AverageMargin),
		AvgMarginTier: costing.Classify(sum.AverageMargin),
		Jobs:          make([]ReportJob, 0, len(inMonth)),
		Months:        monthIndex(all),
	}
	for _, j := range inMonth {
		r.Jobs = append(r.Jobs, reportJob(j))
	}
	if sum.Best != nil {
		best := reportJob(*sum.Best)
		r.BestJob = &best
	}
	if sum.Worst != nil && sum.Worst != sum.Best {
		worst := reportJob(*sum.Worst)
		r.WorstJob = &worst
	}
	return r
}

// MonthlyReport reports on the owner's jobs created in month (YYYY-MM). An empty month means the current UTC month.
func (s *Service) MonthlyReport(ctx context.Context, ownerID, month string) (MonthlyReport, error) {
	if month == "" {
		month = s.now().UTC().Format(costing.MonthLayout)
	}
	normalized, err := costing.ParseMonth(month)
	if err != nil {
		return MonthlyReport{}, invalid("month", "month must be formatted YYYY-MM")
	}

	all, err := s.ListWithMargin(ctx, ownerID)
	if err != nil {
		return MonthlyReport{}, err
	}
	return BuildMonthlyReport(all, normalized), nil
}
