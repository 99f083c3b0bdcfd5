package costing

import "math"

// HealthyThreshold is the margin percentage at or above which a job is healthy.
const HealthyThreshold = 30.0

// Tier is the health classification of a margin.
type Tier string

const (
	TierHealthy    Tier = "healthy"
	TierAcceptable Tier = "acceptable"
	TierDanger     Tier = "danger"
)

// Classify maps a margin percentage to its tier. TierDanger coincides with MarginDanger.
func Classify(margin float64) Tier {
	switch {
	case margin >= HealthyThreshold:
		return TierHealthy
	case margin >= DangerThreshold:
		return TierAcceptable
	default:
		return TierDanger
	}
}

// Token is the presentation hint paired with a tier.
func (t Tier) Token() string {
	switch t {
	case TierHealthy:
		return "green"
	case TierAcceptable:
		return "yellow"
	default:
		return "red"
	}
}

// Round1 rounds to one decimal place, halves toward positive infinity.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
