// file: internals/features/teaching/postings/service/validator.go
package service

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

/* =========================
   Posting Validator
   ========================= */

// Engine is the posting & allocation engine. All state goes through the
// injected Stores; sessionId is threaded explicitly through every call.
type Engine struct {
	stores Stores
}

func NewEngine(stores Stores) *Engine { return &Engine{stores: stores} }

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// CheckCandidate runs the ordered checks against committed state and returns
// nil or the first failure as a *fiber.Error. Read-only: it does NOT reserve
// the slot — commit re-checks through the DB uniqueness constraint, which is
// what actually closes the validate/commit race.
func (e *Engine) CheckCandidate(ctx context.Context, policy SessionPolicy, cand Candidate) error {
	// 1) group exists
	if _, err := e.stores.GroupInfo(ctx, cand.SchoolID, cand.SessionID, cand.GroupNumber); err != nil {
		return err
	}

	// 2) visit number in range
	if cand.VisitNumber < 1 || cand.VisitNumber > policy.MaxSupervisionVisits {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("visit number %d is outside 1..%d", cand.VisitNumber, policy.MaxSupervisionVisits))
	}

	// 3) slot still free among active primaries
	existing, err := e.stores.FindActivePosting(ctx, cand.SessionID, cand.SchoolID, cand.GroupNumber, cand.VisitNumber, true)
	if err != nil {
		return err
	}
	if existing != nil {
		return fiber.NewError(fiber.StatusConflict, "slot already assigned")
	}

	// 4) per-supervisor visit ceiling — enforced only when the session policy
	// says so; otherwise the count is advisory UI data.
	if policy.EnforceVisitCap {
		visits, err := e.stores.CountActiveVisits(ctx, cand.SupervisorID, cand.SessionID)
		if err != nil {
			return err
		}
		if visits+1 > policy.MaxSupervisionVisits {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("supervisor already has %d of %d visits", visits, policy.MaxSupervisionVisits))
		}
	}

	return nil
}

// Validate is the single-candidate entry point exposed to callers. Client-side
// failures come back inside the result; infrastructure failures are returned
// as errors.
func (e *Engine) Validate(ctx context.Context, cand Candidate) (ValidationResult, error) {
	policy, err := e.stores.SessionPolicy(ctx, cand.SessionID)
	if err != nil {
		return ValidationResult{}, err
	}

	if err := e.CheckCandidate(ctx, policy, cand); err != nil {
		if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
			return ValidationResult{Valid: false, Errors: []string{fe.Message}}, nil
		}
		return ValidationResult{}, err
	}
	return ValidationResult{Valid: true, Errors: []string{}}, nil
}
