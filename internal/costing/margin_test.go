package costing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestComputeMargin_ZeroCostJob(t *testing.T) {
	result := ComputeMargin(Job{ID: "j1"}, nil, nil)

	nearlyEqual(t, "margin", result.Margin, 0)
	nearlyEqual(t, "totalCost", result.TotalCost, 0)
	nearlyEqual(t, "estimateAccuracy", result.EstimateAccuracy, 0)
	if !result.MarginDanger {
		t.Fatalf("MarginDanger = false, want true for a 0%% margin")
	}
}

func TestComputeMargin_SumsLaborAndMaterials(t *testing.T) {
	labor := []LaborEntry{
		{Hours: 2, HourlyRate: 50},
		{Hours: 3, HourlyRate: 60},
	}
	materials := []MaterialEntry{{Cost: 100}}

	result := ComputeMargin(Job{EstimatedRevenue: 1000}, labor, materials)

	nearlyEqual(t, "totalLaborCost", result.TotalLaborCost, 280)
	nearlyEqual(t, "totalMaterialCost", result.TotalMaterialCost, 100)
	nearlyEqual(t, "totalCost", result.TotalCost, 380)
	nearlyEqual(t, "margin", result.Margin, 62)
}

func TestComputeMargin_ActualRevenueTakesPrecedence(t *testing.T) {
	job := Job{EstimatedRevenue: 5000, ActualRevenue: 3000}
	materials := []MaterialEntry{{Cost: 1000}}

	result := ComputeMargin(job, nil, materials)

	nearlyEqual(t, "margin", result.Margin, 200.0/3.0)
	nearlyEqual(t, "estimateAccuracy", result.EstimateAccuracy, 60)
}

func TestComputeMargin_EstimateUsedWithoutActuals(t *testing.T) {
	job := Job{EstimatedRevenue: 4000}
	result := ComputeMargin(job, []LaborEntry{{Hours: 10, HourlyRate: 100}}, nil)

	nearlyEqual(t, "margin", result.Margin, 75)
	nearlyEqual(t, "estimateAccuracy", result.EstimateAccuracy, 0)
}

func TestComputeMargin_DangerBoundary(t *testing.T) {
	atBoundary := ComputeMargin(Job{EstimatedRevenue: 1000}, nil, []MaterialEntry{{Cost: 800}})
	nearlyEqual(t, "margin", atBoundary.Margin, 20)
	assert.False(t, atBoundary.MarginDanger, "margin of exactly 20 is not danger")

	below := ComputeMargin(Job{EstimatedRevenue: 1000}, nil, []MaterialEntry{{Cost: 800.0001}})
	assert.Less(t, below.Margin, 20.0)
	assert.True(t, below.MarginDanger)
}

func TestComputeMargin_NegativeMargin(t *testing.T) {
	result := ComputeMargin(Job{EstimatedRevenue: 100}, nil, []MaterialEntry{{Cost: 250}})

	nearlyEqual(t, "margin", result.Margin, -150)
	assert.True(t, result.MarginDanger)
	assert.Equal(t, TierDanger, Classify(result.Margin))
}

func TestComputeMargin_Deterministic(t *testing.T) {
	job := Job{ID: "j1", EstimatedRevenue: 3333.33, ActualRevenue: 3100.1}
	labor := []LaborEntry{{Hours: 7.25, HourlyRate: 83.5}, {Hours: 1.1, HourlyRate: 65}}
	materials := []MaterialEntry{{Cost: 412.37}}

	first := ComputeMargin(job, labor, materials)
	second := ComputeMargin(job, labor, materials)

	assert.Equal(t, first, second)
	assert.Equal(t, math.Float64bits(first.Margin), math.Float64bits(second.Margin))
}

func TestComputeAll_JoinsByJobAndKeepsOrder(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	jobs := []Job{
		{ID: "b", EstimatedRevenue: 1000, CreatedAt: now},
		{ID: "a", EstimatedRevenue: 2000, CreatedAt: now},
	}
	labor := []LaborEntry{
		{JobID: "a", Hours: 1, HourlyRate: 100},
		{JobID: "b", Hours: 2, HourlyRate: 100},
		{JobID: "orphan", Hours: 100, HourlyRate: 100},
	}
	materials := []MaterialEntry{{JobID: "a", Cost: 50}}

	got := ComputeAll(jobs, labor, materials)

	if assert.Len(t, got, 2) {
		assert.Equal(t, "b", got[0].ID)
		nearlyEqual(t, "b totalCost", got[0].TotalCost, 200)
		assert.Equal(t, "a", got[1].ID)
		nearlyEqual(t, "a totalCost", got[1].TotalCost, 150)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		margin float64
		tier   Tier
		token  string
	}{
		{margin: 45, tier: TierHealthy, token: "green"},
		{margin: 30, tier: TierHealthy, token: "green"},
		{margin: 29.99, tier: TierAcceptable, token: "yellow"},
		{margin: 20, tier: TierAcceptable, token: "yellow"},
		{margin: 19.99, tier: TierDanger, token: "red"},
		{margin: -12, tier: TierDanger, token: "red"},
	}

	for _, tt := range tests {
		got := Classify(tt.margin)
		assert.Equal(t, tt.tier, got, "margin %v", tt.margin)
		assert.Equal(t, tt.token, got.Token(), "margin %v", tt.margin)
	}
}

func TestRound1(t *testing.T) {
	nearlyEqual(t, "positive half", Round1(12.25), 12.3)
	nearlyEqual(t, "down", Round1(66.6666), 66.7)
	nearlyEqual(t, "negative half", Round1(-2.25), -2.2)
	nearlyEqual(t, "zero", Round1(0), 0)
}
