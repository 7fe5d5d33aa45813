// file: internals/features/teaching/dean_allocations/service/quota_service.go
package service

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	model "tpms_backend/internals/features/teaching/dean_allocations/model"
)

/* =========================
   Dean Quota Manager
   ========================= */

// Store is what the quota manager needs from persistence. CountSessionSlots is
// the total allocatable primary postings for a session (groups × max visits) —
// the ceiling allocations are carved out of.
type Store interface {
	CreateAllocation(ctx context.Context, alloc *model.DeanAllocationModel) error
	AllocationByID(ctx context.Context, id uuid.UUID) (*model.DeanAllocationModel, error)
	AllocationByDean(ctx context.Context, deanUserID, sessionID uuid.UUID) (*model.DeanAllocationModel, error)
	ListAllocations(ctx context.Context, sessionID uuid.UUID, offset, limit int) ([]model.DeanAllocationModel, int64, error)
	SaveAllocation(ctx context.Context, alloc *model.DeanAllocationModel) error
	DeleteAllocation(ctx context.Context, id uuid.UUID) error
	SumAllocated(ctx context.Context, sessionID uuid.UUID, excludeID uuid.UUID) (int, error)
	CountSessionSlots(ctx context.Context, sessionID uuid.UUID) (int, error)
}

type QuotaService struct {
	store Store
}

func NewQuotaService(store Store) *QuotaService { return &QuotaService{store: store} }

// Allocate creates the allocation for a dean in a session. At most one per
// (dean, session); the new allocation must fit inside the session's
// still-unallocated primary posting pool.
func (s *QuotaService) Allocate(ctx context.Context, alloc *model.DeanAllocationModel) (*model.DeanAllocationModel, error) {
	existing, err := s.store.AllocationByDean(ctx, alloc.DeanAllocationDeanUserID, alloc.DeanAllocationSessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fiber.NewError(fiber.StatusConflict, "an allocation already exists for this dean in this session")
	}

	if err := s.checkPool(ctx, alloc.DeanAllocationSessionID, uuid.Nil, alloc.DeanAllocationAllocatedPostings); err != nil {
		return nil, err
	}

	if err := s.store.CreateAllocation(ctx, alloc); err != nil {
		return nil, err
	}
	return alloc, nil
}

// UpdateAllocation resizes an allocation. It can never shrink below what the
// dean has already used, and can never grow past the session pool.
func (s *QuotaService) UpdateAllocation(ctx context.Context, id uuid.UUID, allocatedPostings int, notes *string) (*model.DeanAllocationModel, error) {
	alloc, err := s.store.AllocationByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if allocatedPostings < alloc.DeanAllocationUsedPostings {
		return nil, fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("allocated postings (%d) cannot be below used postings (%d)",
				allocatedPostings, alloc.DeanAllocationUsedPostings))
	}

	if err := s.checkPool(ctx, alloc.DeanAllocationSessionID, alloc.DeanAllocationID, allocatedPostings); err != nil {
		return nil, err
	}

	alloc.DeanAllocationAllocatedPostings = allocatedPostings
	if notes != nil {
		alloc.DeanAllocationNotes = notes
	}
	if err := s.store.SaveAllocation(ctx, alloc); err != nil {
		return nil, err
	}
	return alloc, nil
}

// Delete removes an allocation; refused while any of it is in use.
func (s *QuotaService) Delete(ctx context.Context, id uuid.UUID) error {
	alloc, err := s.store.AllocationByID(ctx, id)
	if err != nil {
		return err
	}
	if alloc.DeanAllocationUsedPostings > 0 {
		return fiber.NewError(fiber.StatusConflict,
			fmt.Sprintf("allocation has %d used postings and cannot be deleted", alloc.DeanAllocationUsedPostings))
	}
	return s.store.DeleteAllocation(ctx, id)
}

func (s *QuotaService) Get(ctx context.Context, id uuid.UUID) (*model.DeanAllocationModel, error) {
	return s.store.AllocationByID(ctx, id)
}

func (s *QuotaService) List(ctx context.Context, sessionID uuid.UUID, offset, limit int) ([]model.DeanAllocationModel, int64, error) {
	return s.store.ListAllocations(ctx, sessionID, offset, limit)
}

// RemainingFor returns the dean's quota headroom in a session.
func (s *QuotaService) RemainingFor(ctx context.Context, deanUserID, sessionID uuid.UUID) (int, error) {
	alloc, err := s.store.AllocationByDean(ctx, deanUserID, sessionID)
	if err != nil {
		return 0, err
	}
	if alloc == nil {
		return 0, fiber.NewError(fiber.StatusNotFound, "no allocation exists for this dean in this session")
	}
	return alloc.Remaining(), nil
}

// checkPool verifies that granting `requested` postings to one dean still fits
// inside sessionSlots − allocationsToOtherDeans.
func (s *QuotaService) checkPool(ctx context.Context, sessionID, excludeID uuid.UUID, requested int) error {
	totalSlots, err := s.store.CountSessionSlots(ctx, sessionID)
	if err != nil {
		return err
	}
	otherAllocated, err := s.store.SumAllocated(ctx, sessionID, excludeID)
	if err != nil {
		return err
	}
	available := totalSlots - otherAllocated
	if requested > available {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("requested %d postings but only %d remain allocatable in this session", requested, available))
	}
	return nil
}
