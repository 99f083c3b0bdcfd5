package costing

import "time"

// Summary is the aggregate of a set of jobs. Values are unrounded.
type Summary struct {
	Count                   int
	AverageMargin           float64
	ActiveCount             int
	CompletedCount          int
	InvoicedCount           int
	DangerCount             int
	AverageEstimateAccuracy float64
	TotalRevenue            float64
	TotalCost               float64
	GrossProfit             float64
	ActiveValue             float64

	// Best and Worst point into the input slice. Both are nil for an empty input and
	// both point to the same record when the input holds exactly one job.
	Best  *JobWithMargin
	Worst *JobWithMargin
}

// Summarize aggregates jobs. It never fails; an empty input yields the zero Summary.
// Ties for best and worst go to the earliest record in input order.
func Summarize(jobs []JobWithMargin) Summary {
	var s Summary
	s.Count = len(jobs)
	if s.Count == 0 {
		return s
	}

	marginSum := 0.0
	accuracySum := 0.0
	accuracyN := 0

	for i := range jobs {
		j := &jobs[i]
		marginSum += j.Margin

		switch j.Status {
		case StatusActive:
			s.ActiveCount++
			s.ActiveValue += j.RevenueUsed()
		case StatusCompleted:
			s.CompletedCount++
		case StatusInvoiced:
			s.InvoicedCount++
		}

		if j.MarginDanger {
			s.DangerCount++
		}

		if j.Status.Closed() && j.EstimatedRevenue > 0 {
			accuracySum += j.EstimateAccuracy
			accuracyN++
		}

		s.TotalRevenue += j.RevenueUsed()
		s.TotalCost += j.TotalCost

		if s.Best == nil || j.Margin > s.Best.Margin {
			s.Best = j
		}
		if s.Worst == nil || j.Margin < s.Worst.Margin {
			s.Worst = j
		}
	}

	s.AverageMargin = marginSum / float64(s.Count)
	if accuracyN > 0 {
		s.AverageEstimateAccuracy = accuracySum / float64(accuracyN)
	}
	s.GrossProfit = s.TotalRevenue - s.TotalCost
	return s
}

// MonthLayout is the year-month bucket format.
const MonthLayout = "2006-01"

// MonthOf returns the UTC year-month bucket a job belongs to, keyed by its creation time.
func MonthOf(j Job) string {
	return j.CreatedAt.UTC().Format(MonthLayout)
}

// ParseMonth validates a YYYY-MM bucket key and returns it normalized.
func ParseMonth(s string) (string, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return "", err
	}
	return t.Format(MonthLayout), nil
}

// FilterByMonth returns the jobs created in the given UTC month, preserving order.
func FilterByMonth(jobs []JobWithMargin, month string) []JobWithMargin {
	out := make([]JobWithMargin, 0, len(jobs))
	for _, j := range jobs {
		if MonthOf(j.Job) == month {
			out = append(out, j)
		}
	}
	return out
}

// GroupByMonth partitions jobs into month buckets, each preserving input order.
func GroupByMonth(jobs []JobWithMargin) map[string][]JobWithMargin {
	out := make(map[string][]JobWithMargin)
	for _, j := range jobs {
		m := MonthOf(j.Job)
		out[m] = append(out[m], j)
	}
	return out
}
