// file: internals/features/teaching/postings/service/batch.go
package service

import (
	"context"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	helper "tpms_backend/internals/helpers"

	pmodel "tpms_backend/internals/features/teaching/postings/model"
)

/* =========================
   Batch Posting Processor
   ========================= */

type BatchItemSuccess struct {
	Row       int                `json:"row"`
	Candidate Candidate          `json:"candidate"`
	PostingID uuid.UUID          `json:"posting_id"`
	Allowance AllowanceBreakdown `json:"allowance"`
}

type BatchItemFailure struct {
	Row       int       `json:"row"`
	Candidate Candidate `json:"candidate"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
}

// DependentPosting is an auto-created zero-allowance record at a merged
// cluster member school. Never counts toward payment or dean quota.
type DependentPosting struct {
	PostingID           uuid.UUID `json:"posting_id"`
	SchoolID            uuid.UUID `json:"school_id"`
	GroupNumber         int       `json:"group_number"`
	VisitNumber         int       `json:"visit_number"`
	MergedWithPostingID uuid.UUID `json:"merged_with_posting_id"`
}

type BatchSummary struct {
	Submitted  int `json:"submitted"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Dependents int `json:"dependents"`
}

type BatchResult struct {
	Successful        []BatchItemSuccess `json:"successful"`
	Failed            []BatchItemFailure `json:"failed"`
	DependentPostings []DependentPosting `json:"dependent_postings"`
	Summary           BatchSummary       `json:"summary"`
}

// recoverableStatus reports whether err is a caller-facing 4xx; anything else
// is treated as a request-level fault that aborts the rest of the batch.
func recoverableStatus(err error) (int, string, bool) {
	if helper.IsPGConflict(err) {
		return fiber.StatusConflict, "slot already assigned", true
	}
	if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
		return fe.Code, fe.Message, true
	}
	return 0, "", false
}

// SubmitBatch validates and commits a set of candidate postings for one
// session. Items fail independently; a storage-level fault aborts the
// remainder and surfaces as a single error.
func (e *Engine) SubmitBatch(ctx context.Context, sessionID uuid.UUID, candidates []Candidate, author Author) (*BatchResult, error) {
	policy, err := e.stores.SessionPolicy(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		Successful:        []BatchItemSuccess{},
		Failed:            []BatchItemFailure{},
		DependentPostings: []DependentPosting{},
	}
	result.Summary.Submitted = len(candidates)

	// 1) in-batch duplicate resolution: the EARLIEST row for a slot key wins,
	// later rows are flagged against it. Intentionally asymmetric — the UI
	// surfaces the conflict against a concrete prior row.
	skip := make([]bool, len(candidates))
	firstRowFor := make(map[SlotKey]int, len(candidates))
	for i := range candidates {
		candidates[i].SessionID = sessionID
		key := candidates[i].SlotKey()
		if first, dup := firstRowFor[key]; dup {
			skip[i] = true
			result.Failed = append(result.Failed, BatchItemFailure{
				Row:       i + 1,
				Candidate: candidates[i],
				Status:    fiber.StatusConflict,
				Error:     fmt.Sprintf("duplicate of row %d", first+1),
			})
			continue
		}
		firstRowFor[key] = i
	}

	// 2) dean quota gate: the whole batch is rejected, never trimmed.
	surviving := len(candidates) - len(result.Failed)
	if author.QuotaBound {
		remaining, found, err := e.stores.QuotaRemaining(ctx, author.UserID, sessionID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fiber.NewError(fiber.StatusConflict, "no dean allocation exists for this session")
		}
		if surviving > remaining {
			return nil, fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("dean allocation exceeded: %d candidates but only %d postings remaining", surviving, remaining))
		}
	}

	// 3) validate + commit per candidate, in submission order
	for i, cand := range candidates {
		if skip[i] {
			continue
		}

		if err := e.CheckCandidate(ctx, policy, cand); err != nil {
			if status, msg, ok := recoverableStatus(err); ok {
				result.Failed = append(result.Failed, BatchItemFailure{Row: i + 1, Candidate: cand, Status: status, Error: msg})
				continue
			}
			return nil, err
		}

		posting, deps, err := e.commitCandidate(ctx, policy, cand, author)
		if err != nil {
			if status, msg, ok := recoverableStatus(err); ok {
				result.Failed = append(result.Failed, BatchItemFailure{Row: i + 1, Candidate: cand, Status: status, Error: msg})
				continue
			}
			log.Printf("[Batch.Submit] fatal commit error at row %d: %v", i+1, err)
			return nil, err
		}

		result.Successful = append(result.Successful, BatchItemSuccess{
			Row:       i + 1,
			Candidate: cand,
			PostingID: posting.SupervisorPostingID,
			Allowance: breakdownFromPosting(posting),
		})
		result.DependentPostings = append(result.DependentPostings, deps...)
	}

	result.Summary.Successful = len(result.Successful)
	result.Summary.Failed = len(result.Failed)
	result.Summary.Dependents = len(result.DependentPostings)
	return result, nil
}

// commitCandidate prices and persists one accepted candidate: the primary
// posting, any dependent postings at merged cluster member schools, and the
// author's quota consumption — all in one transaction so quota never drifts
// under partial failure.
func (e *Engine) commitCandidate(ctx context.Context, policy SessionPolicy, cand Candidate, author Author) (*pmodel.SupervisorPostingModel, []DependentPosting, error) {
	sup, err := e.stores.SupervisorInfo(ctx, cand.SupervisorID)
	if err != nil {
		return nil, nil, err
	}
	rank, err := e.stores.RankRates(ctx, sup.RankID)
	if err != nil {
		return nil, nil, err
	}

	breakdown := CalculateAllowance(rank, cand.DistanceKm, policy, 1)
	primary := newPostingModel(cand, author, breakdown, true, nil)

	var deps []DependentPosting
	err = e.stores.WithinTx(ctx, func(txs Stores) error {
		if err := txs.CreatePosting(ctx, primary); err != nil {
			return err
		}

		// merged-group propagation, idempotent: member slots already covered
		// by any active posting are left alone.
		members, err := txs.MergedClusterMembers(ctx, cand.SchoolID, cand.GroupNumber)
		if err != nil {
			return err
		}
		for _, memberSchoolID := range members {
			existing, err := txs.FindActivePosting(ctx, cand.SessionID, memberSchoolID, cand.GroupNumber, cand.VisitNumber, false)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			depCand := cand
			depCand.SchoolID = memberSchoolID
			depCand.DistanceKm = 0
			dep := newPostingModel(depCand, author, ZeroAllowance(), false, &primary.SupervisorPostingID)
			if err := txs.CreatePosting(ctx, dep); err != nil {
				return err
			}
			deps = append(deps, DependentPosting{
				PostingID:           dep.SupervisorPostingID,
				SchoolID:            memberSchoolID,
				GroupNumber:         cand.GroupNumber,
				VisitNumber:         cand.VisitNumber,
				MergedWithPostingID: primary.SupervisorPostingID,
			})
		}

		if author.QuotaBound {
			if err := txs.ConsumeQuota(ctx, author.UserID, cand.SessionID, 1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return primary, deps, nil
}

/* =========================
   Cancellation
   ========================= */

type CancelResult struct {
	PostingID           uuid.UUID `json:"posting_id"`
	DependentsCancelled int64     `json:"dependents_cancelled"`
	QuotaReleased       bool      `json:"quota_released"`
}

// CancelPosting soft-cancels a posting, freeing its slot. Cancelling a primary
// also cancels its dependent postings and returns one posting to the authoring
// dean's quota (a no-op for admin-authored postings).
func (e *Engine) CancelPosting(ctx context.Context, postingID uuid.UUID) (*CancelResult, error) {
	posting, err := e.stores.GetPosting(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if posting.SupervisorPostingStatus != pmodel.PostingStatusActive {
		return nil, fiber.NewError(fiber.StatusConflict, "posting already cancelled")
	}

	out := &CancelResult{PostingID: postingID}
	err = e.stores.WithinTx(ctx, func(txs Stores) error {
		if err := txs.CancelPosting(ctx, postingID); err != nil {
			return err
		}
		if !posting.SupervisorPostingIsPrimary {
			return nil
		}
		n, err := txs.CancelDependents(ctx, postingID)
		if err != nil {
			return err
		}
		out.DependentsCancelled = n

		if posting.SupervisorPostingCreatedBy != nil {
			if err := txs.ReleaseQuota(ctx, *posting.SupervisorPostingCreatedBy, posting.SupervisorPostingSessionID, 1); err != nil {
				return err
			}
			out.QuotaReleased = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

/* =========================
   Model builders
   ========================= */

func newPostingModel(cand Candidate, author Author, b AllowanceBreakdown, isPrimary bool, mergedWith *uuid.UUID) *pmodel.SupervisorPostingModel {
	rationale := b.Rationale
	createdBy := author.UserID
	return &pmodel.SupervisorPostingModel{
		SupervisorPostingID:           uuid.New(),
		SupervisorPostingSessionID:    cand.SessionID,
		SupervisorPostingSchoolID:     cand.SchoolID,
		SupervisorPostingGroupNumber:  cand.GroupNumber,
		SupervisorPostingVisitNumber:  cand.VisitNumber,
		SupervisorPostingSupervisorID: cand.SupervisorID,
		SupervisorPostingDistanceKm:   cand.DistanceKm,
		SupervisorPostingIsPrimary:    isPrimary,
		SupervisorPostingMergedWithID: mergedWith,
		SupervisorPostingTransport:    b.Transport,
		SupervisorPostingDsa:          b.Dsa,
		SupervisorPostingDta:          b.Dta,
		SupervisorPostingLocalRunning: b.LocalRunning,
		SupervisorPostingTetfund:      b.Tetfund,
		SupervisorPostingOther:        b.Other,
		SupervisorPostingPerVisitTotal:    b.PerVisitTotal,
		SupervisorPostingDistanceCategory: b.DistanceCategory,
		SupervisorPostingRationale:        &rationale,
		SupervisorPostingStatus:           pmodel.PostingStatusActive,
		SupervisorPostingCreatedBy:        &createdBy,
	}
}

func breakdownFromPosting(p *pmodel.SupervisorPostingModel) AllowanceBreakdown {
	rationale := ""
	if p.SupervisorPostingRationale != nil {
		rationale = *p.SupervisorPostingRationale
	}
	return AllowanceBreakdown{
		LocalRunning:     p.SupervisorPostingLocalRunning,
		Transport:        p.SupervisorPostingTransport,
		Dsa:              p.SupervisorPostingDsa,
		Dta:              p.SupervisorPostingDta,
		Tetfund:          p.SupervisorPostingTetfund,
		Other:            p.SupervisorPostingOther,
		PerVisitTotal:    p.SupervisorPostingPerVisitTotal,
		VisitCount:       1,
		GrandTotal:       p.SupervisorPostingPerVisitTotal,
		DistanceCategory: p.SupervisorPostingDistanceCategory,
		Rationale:        rationale,
	}
}
