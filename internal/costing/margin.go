package costing

// DangerThreshold is the margin percentage below which a job is flagged.
const DangerThreshold = 20.0

// ComputeMargin derives the financial view of a job from its line items.
//
// Entries are summed as given; callers must pass only the entries that belong to job.
// No rounding is applied. The function is total: empty entry lists yield zero costs
// and zero revenue yields a 0% margin.
func ComputeMargin(job Job, labor []LaborEntry, materials []MaterialEntry) JobWithMargin {
	laborCost := 0.0
	for _, e := range labor {
		laborCost += e.Cost()
	}

	materialCost := 0.0
	for _, e := range materials {
		materialCost += e.Cost
	}

	totalCost := laborCost + materialCost

	revenue := job.RevenueUsed()
	margin := 0.0
	if revenue > 0 {
		margin = ((revenue - totalCost) / revenue) * 100
	}

	// Zero actuals against a positive estimate reads as 0% accurate.
	accuracy := 0.0
	if job.EstimatedRevenue > 0 {
		accuracy = (job.ActualRevenue / job.EstimatedRevenue) * 100
	}

	return JobWithMargin{
		Job:               job,
		TotalLaborCost:    laborCost,
		TotalMaterialCost: materialCost,
		TotalCost:         totalCost,
		Margin:            margin,
		MarginDanger:      margin < DangerThreshold,
		EstimateAccuracy:  accuracy,
	}
}

// ComputeAll joins owner-wide entry lists to their jobs by job id and computes each job.
// Output order follows jobs. Entries whose job is not in jobs are ignored.
func ComputeAll(jobs []Job, labor []LaborEntry, materials []MaterialEntry) []JobWithMargin {
	laborByJob := make(map[string][]LaborEntry, len(jobs))
	for _, e := range labor {
		laborByJob[e.JobID] = append(laborByJob[e.JobID], e)
	}
	materialsByJob := make(map[string][]MaterialEntry, len(jobs))
	for _, e := range materials {
		materialsByJob[e.JobID] = append(materialsByJob[e.JobID], e)
	}

	out := make([]JobWithMargin, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, ComputeMargin(job, laborByJob[job.ID], materialsByJob[job.ID]))
	}
	return out
}
