// file: internals/features/teaching/postings/service/autopost.go
package service

import (
	"context"
	"log"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

/* =========================
   Auto-Posting Allocator
   ========================= */

// SupervisorLess orders the supervisor rotation. The default prefers the
// least-loaded supervisor and breaks ties by ID so runs are reproducible;
// callers may swap in their own fairness policy.
type SupervisorLess func(a, b SupervisorLoad) bool

func DefaultSupervisorLess(a, b SupervisorLoad) bool {
	if a.CurrentVisits != b.CurrentVisits {
		return a.CurrentVisits < b.CurrentVisits
	}
	return a.SupervisorID.String() < b.SupervisorID.String()
}

type AutoPostOptions struct {
	// FacultyID restricts both the slot pool and the supervisor pool
	// (dean-scoped runs).
	FacultyID *uuid.UUID
	// MaxAssignments caps the run; 0 means no cap.
	MaxAssignments int
	// Less overrides the rotation comparator; nil uses DefaultSupervisorLess.
	Less SupervisorLess
}

type Assignment struct {
	Slot          OpenSlot  `json:"slot"`
	SupervisorID  uuid.UUID `json:"supervisor_id"`
	PostingID     uuid.UUID `json:"posting_id"`
	PerVisitTotal float64   `json:"per_visit_total"`
}

type UnfilledSlot struct {
	Slot   OpenSlot `json:"slot"`
	Reason string   `json:"reason"`
}

type AutoPostSummary struct {
	SlotsConsidered int `json:"slots_considered"`
	Assigned        int `json:"assigned"`
	Unfilled        int `json:"unfilled"`
	SupervisorPool  int `json:"supervisor_pool"`
	Dependents      int `json:"dependents"`
}

type AutoPostResult struct {
	Assigned          []Assignment       `json:"assigned"`
	Unfilled          []UnfilledSlot     `json:"unfilled"`
	DependentPostings []DependentPosting `json:"dependent_postings"`
	Summary           AutoPostSummary    `json:"summary"`
}

// AutoPost greedily assigns supervisors to open slots, feeding every candidate
// through the same validator and single-item commit path as manual batches.
// It is a heuristic: deterministic, load-balanced, and explicitly not claimed
// to be an optimal matching. An unfillable slot is data, never an error.
func (e *Engine) AutoPost(ctx context.Context, sessionID uuid.UUID, opts AutoPostOptions, author Author) (*AutoPostResult, error) {
	policy, err := e.stores.SessionPolicy(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	slots, err := e.stores.ListOpenSlots(ctx, sessionID, opts.FacultyID)
	if err != nil {
		return nil, err
	}
	// deterministic slot order: school, then group, then visit
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].SchoolID != slots[j].SchoolID {
			return slots[i].SchoolID.String() < slots[j].SchoolID.String()
		}
		if slots[i].GroupNumber != slots[j].GroupNumber {
			return slots[i].GroupNumber < slots[j].GroupNumber
		}
		return slots[i].VisitNumber < slots[j].VisitNumber
	})

	pool, err := e.stores.ListEligibleSupervisors(ctx, sessionID, opts.FacultyID)
	if err != nil {
		return nil, err
	}

	less := opts.Less
	if less == nil {
		less = DefaultSupervisorLess
	}
	sort.SliceStable(pool, func(i, j int) bool { return less(pool[i], pool[j]) })

	maxAssignments := opts.MaxAssignments
	if author.QuotaBound {
		remaining, found, err := e.stores.QuotaRemaining(ctx, author.UserID, sessionID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fiber.NewError(fiber.StatusConflict, "no dean allocation exists for this session")
		}
		if maxAssignments == 0 || remaining < maxAssignments {
			maxAssignments = remaining
		}
	}

	result := &AutoPostResult{
		Assigned:          []Assignment{},
		Unfilled:          []UnfilledSlot{},
		DependentPostings: []DependentPosting{},
	}
	result.Summary.SlotsConsidered = len(slots)
	result.Summary.SupervisorPool = len(pool)

	rotation := 0
	for _, slot := range slots {
		if maxAssignments > 0 && len(result.Assigned) >= maxAssignments {
			result.Unfilled = append(result.Unfilled, UnfilledSlot{Slot: slot, Reason: "assignment cap reached"})
			continue
		}
		if len(pool) == 0 {
			result.Unfilled = append(result.Unfilled, UnfilledSlot{Slot: slot, Reason: "no eligible supervisors"})
			continue
		}

		assigned := false
		lastReason := "no eligible supervisors"
		for k := 0; k < len(pool); k++ {
			idx := (rotation + k) % len(pool)
			sup := pool[idx]

			cand := Candidate{
				SessionID:    sessionID,
				SupervisorID: sup.SupervisorID,
				SchoolID:     slot.SchoolID,
				GroupNumber:  slot.GroupNumber,
				VisitNumber:  slot.VisitNumber,
				DistanceKm:   slot.DistanceKm,
			}

			if err := e.CheckCandidate(ctx, policy, cand); err != nil {
				if _, msg, ok := recoverableStatus(err); ok {
					lastReason = msg
					continue
				}
				return nil, err
			}

			posting, deps, err := e.commitCandidate(ctx, policy, cand, author)
			if err != nil {
				if _, msg, ok := recoverableStatus(err); ok {
					lastReason = msg
					continue
				}
				log.Printf("[AutoPost] fatal commit error on slot (%s g%d v%d): %v",
					slot.SchoolID, slot.GroupNumber, slot.VisitNumber, err)
				return nil, err
			}

			result.Assigned = append(result.Assigned, Assignment{
				Slot:          slot,
				SupervisorID:  sup.SupervisorID,
				PostingID:     posting.SupervisorPostingID,
				PerVisitTotal: posting.SupervisorPostingPerVisitTotal,
			})
			result.DependentPostings = append(result.DependentPostings, deps...)
			pool[idx].CurrentVisits++
			rotation = (idx + 1) % len(pool)
			assigned = true
			break
		}

		if !assigned {
			result.Unfilled = append(result.Unfilled, UnfilledSlot{Slot: slot, Reason: lastReason})
		}
	}

	result.Summary.Assigned = len(result.Assigned)
	result.Summary.Unfilled = len(result.Unfilled)
	result.Summary.Dependents = len(result.DependentPostings)
	return result, nil
}

/* =========================
   Allowance preview
   ========================= */

// PreviewAllowance prices a hypothetical posting without persisting anything.
func (e *Engine) PreviewAllowance(ctx context.Context, sessionID, rankID uuid.UUID, distanceKm float64, visitCount int) (AllowanceBreakdown, error) {
	policy, err := e.stores.SessionPolicy(ctx, sessionID)
	if err != nil {
		return AllowanceBreakdown{}, err
	}
	rank, err := e.stores.RankRates(ctx, rankID)
	if err != nil {
		return AllowanceBreakdown{}, err
	}
	return CalculateAllowance(rank, distanceKm, policy, visitCount), nil
}
