// file: internals/features/teaching/postings/service/allowance_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pmodel "tpms_backend/internals/features/teaching/postings/model"
)

func TestCalculateAllowance_InsideThreshold(t *testing.T) {
	b := CalculateAllowance(testRank(), 8, testPolicy(), 1)

	assert.Equal(t, pmodel.DistanceCategoryInside, b.DistanceCategory)
	assert.Equal(t, 2000.0, b.LocalRunning)
	assert.Zero(t, b.Transport)
	assert.Zero(t, b.Dsa)
	assert.Zero(t, b.Dta)
	assert.Zero(t, b.Tetfund)
	assert.Equal(t, 2000.0, b.PerVisitTotal)
	assert.Equal(t, 2000.0, b.GrandTotal)
}

func TestCalculateAllowance_OutsideWithinDsaWindow(t *testing.T) {
	b := CalculateAllowance(testRank(), 20, testPolicy(), 1)

	assert.Equal(t, pmodel.DistanceCategoryOutside, b.DistanceCategory)
	assert.Zero(t, b.LocalRunning)
	assert.Equal(t, 1000.0, b.Transport) // 50/km * 20km
	assert.Equal(t, 2500.0, b.Dsa)       // 50% of DTA 5000
	assert.Zero(t, b.Dta)
	assert.Equal(t, 1000.0, b.Tetfund)
	assert.Equal(t, 4500.0, b.PerVisitTotal)
}

func TestCalculateAllowance_OutsideBeyondDsaWindow(t *testing.T) {
	b := CalculateAllowance(testRank(), 40, testPolicy(), 1)

	assert.Equal(t, pmodel.DistanceCategoryOutside, b.DistanceCategory)
	assert.Equal(t, 2000.0, b.Transport) // 50/km * 40km
	assert.Zero(t, b.Dsa)
	assert.Equal(t, 5000.0, b.Dta)
	assert.Equal(t, 1000.0, b.Tetfund)
	assert.Equal(t, 8000.0, b.PerVisitTotal)
}

func TestCalculateAllowance_DsaDisabledPaysFullDta(t *testing.T) {
	policy := testPolicy()
	policy.DsaEnabled = false

	b := CalculateAllowance(testRank(), 20, policy, 1)
	assert.Zero(t, b.Dsa)
	assert.Equal(t, 5000.0, b.Dta)
}

func TestCalculateAllowance_DsaDtaNeverBothNonZero(t *testing.T) {
	policy := testPolicy()
	rank := testRank()

	for km := 0.0; km <= 60; km += 0.5 {
		b := CalculateAllowance(rank, km, policy, 1)
		assert.False(t, b.Dsa > 0 && b.Dta > 0, "both DSA and DTA paid at %.1f km", km)

		if b.DistanceCategory == pmodel.DistanceCategoryInside {
			assert.Zero(t, b.Transport, "transport paid inside threshold at %.1f km", km)
			assert.Zero(t, b.Tetfund)
		} else {
			assert.Zero(t, b.LocalRunning, "local running paid outside threshold at %.1f km", km)
		}
	}
}

func TestCalculateAllowance_ThresholdBoundaryIsInside(t *testing.T) {
	b := CalculateAllowance(testRank(), 10, testPolicy(), 1)
	assert.Equal(t, pmodel.DistanceCategoryInside, b.DistanceCategory)
}

func TestCalculateAllowance_DsaWindowBoundsInclusive(t *testing.T) {
	policy := testPolicy()
	rank := testRank()

	atMin := CalculateAllowance(rank, policy.DsaMinDistanceKm, policy, 1)
	assert.Equal(t, 2500.0, atMin.Dsa)
	assert.Zero(t, atMin.Dta)

	atMax := CalculateAllowance(rank, policy.DsaMaxDistanceKm, policy, 1)
	assert.Equal(t, 2500.0, atMax.Dsa)
	assert.Zero(t, atMax.Dta)

	past := CalculateAllowance(rank, policy.DsaMaxDistanceKm+0.1, policy, 1)
	assert.Zero(t, past.Dsa)
	assert.Equal(t, 5000.0, past.Dta)
}

func TestCalculateAllowance_OtherAllowancesAndVisitMultiplier(t *testing.T) {
	rank := testRank()
	rank.OtherAllowances = map[string]float64{"hazard": 300, "field": 200}

	b := CalculateAllowance(rank, 8, testPolicy(), 3)
	assert.Equal(t, 500.0, b.Other)
	assert.Equal(t, 2500.0, b.PerVisitTotal)
	assert.Equal(t, 7500.0, b.GrandTotal)
	assert.Equal(t, 3, b.VisitCount)
}

func TestCalculateAllowance_VisitCountFloorsAtOne(t *testing.T) {
	b := CalculateAllowance(testRank(), 8, testPolicy(), 0)
	assert.Equal(t, 1, b.VisitCount)
	assert.Equal(t, b.PerVisitTotal, b.GrandTotal)
}

func TestZeroAllowance(t *testing.T) {
	b := ZeroAllowance()
	assert.Zero(t, b.PerVisitTotal)
	assert.Zero(t, b.GrandTotal)
	assert.Equal(t, pmodel.DistanceCategoryInside, b.DistanceCategory)
}
