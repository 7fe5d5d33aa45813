// file: internals/features/teaching/postings/service/allowance.go
package service

import (
	"fmt"

	pmodel "tpms_backend/internals/features/teaching/postings/model"
)

/* =========================
   Allowance Calculator
   ========================= */

// AllowanceBreakdown is the per-visit monetary result plus audit fields.
type AllowanceBreakdown struct {
	LocalRunning     float64 `json:"local_running"`
	Transport        float64 `json:"transport"`
	Dsa              float64 `json:"dsa"`
	Dta              float64 `json:"dta"`
	Tetfund          float64 `json:"tetfund"`
	Other            float64 `json:"other"`
	PerVisitTotal    float64 `json:"per_visit_total"`
	VisitCount       int     `json:"visit_count"`
	GrandTotal       float64 `json:"grand_total"`
	DistanceCategory string  `json:"distance_category"`
	Rationale        string  `json:"rationale"`
}

// CalculateAllowance prices one posting under the distance-tiered policy.
// Deterministic and side-effect free; inputs are expected to be validated
// numerics (negative distance/rates are the caller's problem).
//
// Inside the threshold only the local running allowance applies. Outside it,
// transport + tetfund always apply, plus exactly one of DSA (inside the DSA
// distance window, as a percentage of DTA) or DTA. DSA and DTA are never both
// non-zero for the same posting.
func CalculateAllowance(rank RankRates, distanceKm float64, policy SessionPolicy, visitCount int) AllowanceBreakdown {
	if visitCount < 1 {
		visitCount = 1
	}

	out := AllowanceBreakdown{VisitCount: visitCount}

	isInside := distanceKm <= policy.InsideDistanceThresholdKm
	if isInside {
		out.DistanceCategory = pmodel.DistanceCategoryInside
		out.LocalRunning = rank.LocalRunningAllowance
		out.Rationale = fmt.Sprintf(
			"distance %.1f km is within the %.1f km threshold: local running allowance only",
			distanceKm, policy.InsideDistanceThresholdKm,
		)
	} else {
		out.DistanceCategory = pmodel.DistanceCategoryOutside
		out.Transport = rank.TransportPerKm * distanceKm
		out.Tetfund = rank.Tetfund

		inDsaWindow := policy.DsaEnabled &&
			distanceKm >= policy.DsaMinDistanceKm &&
			distanceKm <= policy.DsaMaxDistanceKm
		if inDsaWindow {
			out.Dsa = rank.Dta * policy.DsaPercentage / 100
			out.Rationale = fmt.Sprintf(
				"distance %.1f km is outside the %.1f km threshold; DSA window %.1f-%.1f km applies at %.0f%% of DTA",
				distanceKm, policy.InsideDistanceThresholdKm,
				policy.DsaMinDistanceKm, policy.DsaMaxDistanceKm, policy.DsaPercentage,
			)
		} else {
			out.Dta = rank.Dta
			out.Rationale = fmt.Sprintf(
				"distance %.1f km is outside the %.1f km threshold and beyond the DSA window; full DTA applies",
				distanceKm, policy.InsideDistanceThresholdKm,
			)
		}
	}

	for _, amount := range rank.OtherAllowances {
		out.Other += amount
	}

	out.PerVisitTotal = out.LocalRunning + out.Transport + out.Dsa + out.Dta + out.Tetfund + out.Other
	out.GrandTotal = out.PerVisitTotal * float64(visitCount)
	return out
}

// ZeroAllowance is the breakdown carried by dependent (merged-group) postings.
func ZeroAllowance() AllowanceBreakdown {
	return AllowanceBreakdown{
		VisitCount:       1,
		DistanceCategory: pmodel.DistanceCategoryInside,
		Rationale:        "dependent posting for a merged school; coverage only, no separate payment",
	}
}
