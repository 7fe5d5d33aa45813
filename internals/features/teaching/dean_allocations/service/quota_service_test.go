// file: internals/features/teaching/dean_allocations/service/quota_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "tpms_backend/internals/features/teaching/dean_allocations/model"
)

/* =========================
   In-memory Store for tests
   ========================= */

type fakeStore struct {
	allocations map[uuid.UUID]*model.DeanAllocationModel
	// sessionSlots is the allocatable pool ceiling per session
	sessionSlots map[uuid.UUID]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		allocations:  map[uuid.UUID]*model.DeanAllocationModel{},
		sessionSlots: map[uuid.UUID]int{},
	}
}

func (f *fakeStore) CreateAllocation(_ context.Context, alloc *model.DeanAllocationModel) error {
	if alloc.DeanAllocationID == uuid.Nil {
		alloc.DeanAllocationID = uuid.New()
	}
	for _, existing := range f.allocations {
		if existing.DeanAllocationDeanUserID == alloc.DeanAllocationDeanUserID &&
			existing.DeanAllocationSessionID == alloc.DeanAllocationSessionID {
			return fiber.NewError(fiber.StatusConflict, "an allocation already exists for this dean in this session")
		}
	}
	f.allocations[alloc.DeanAllocationID] = alloc
	return nil
}

func (f *fakeStore) AllocationByID(_ context.Context, id uuid.UUID) (*model.DeanAllocationModel, error) {
	alloc, ok := f.allocations[id]
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "allocation not found")
	}
	return alloc, nil
}

func (f *fakeStore) AllocationByDean(_ context.Context, deanUserID, sessionID uuid.UUID) (*model.DeanAllocationModel, error) {
	for _, alloc := range f.allocations {
		if alloc.DeanAllocationDeanUserID == deanUserID && alloc.DeanAllocationSessionID == sessionID {
			return alloc, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListAllocations(_ context.Context, sessionID uuid.UUID, offset, limit int) ([]model.DeanAllocationModel, int64, error) {
	var rows []model.DeanAllocationModel
	for _, alloc := range f.allocations {
		if alloc.DeanAllocationSessionID == sessionID {
			rows = append(rows, *alloc)
		}
	}
	total := int64(len(rows))
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, total, nil
}

func (f *fakeStore) SaveAllocation(_ context.Context, alloc *model.DeanAllocationModel) error {
	f.allocations[alloc.DeanAllocationID] = alloc
	return nil
}

func (f *fakeStore) DeleteAllocation(_ context.Context, id uuid.UUID) error {
	delete(f.allocations, id)
	return nil
}

func (f *fakeStore) SumAllocated(_ context.Context, sessionID uuid.UUID, excludeID uuid.UUID) (int, error) {
	sum := 0
	for _, alloc := range f.allocations {
		if alloc.DeanAllocationSessionID == sessionID && alloc.DeanAllocationID != excludeID {
			sum += alloc.DeanAllocationAllocatedPostings
		}
	}
	return sum, nil
}

func (f *fakeStore) CountSessionSlots(_ context.Context, sessionID uuid.UUID) (int, error) {
	slots, ok := f.sessionSlots[sessionID]
	if !ok {
		return 0, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return slots, nil
}

/* =========================
   Tests
   ========================= */

func newAlloc(sessionID uuid.UUID, allocated int) *model.DeanAllocationModel {
	return &model.DeanAllocationModel{
		DeanAllocationDeanUserID:        uuid.New(),
		DeanAllocationSessionID:         sessionID,
		DeanAllocationAllocatedPostings: allocated,
	}
}

func requireFiberCode(t *testing.T, err error, code int) {
	t.Helper()
	fe, ok := err.(*fiber.Error)
	require.True(t, ok, "expected *fiber.Error, got %T: %v", err, err)
	assert.Equal(t, code, fe.Code)
}

func TestAllocate_OnePerDeanPerSession(t *testing.T) {
	store := newFakeStore()
	sessionID := uuid.New()
	store.sessionSlots[sessionID] = 20
	svc := NewQuotaService(store)

	alloc := newAlloc(sessionID, 5)
	_, err := svc.Allocate(context.Background(), alloc)
	require.NoError(t, err)

	dup := newAlloc(sessionID, 3)
	dup.DeanAllocationDeanUserID = alloc.DeanAllocationDeanUserID
	_, err = svc.Allocate(context.Background(), dup)
	requireFiberCode(t, err, fiber.StatusConflict)

	// same dean, different session is fine
	otherSession := uuid.New()
	store.sessionSlots[otherSession] = 20
	other := newAlloc(otherSession, 3)
	other.DeanAllocationDeanUserID = alloc.DeanAllocationDeanUserID
	_, err = svc.Allocate(context.Background(), other)
	require.NoError(t, err)
}

func TestAllocate_PoolCeiling(t *testing.T) {
	store := newFakeStore()
	sessionID := uuid.New()
	store.sessionSlots[sessionID] = 10
	svc := NewQuotaService(store)

	_, err := svc.Allocate(context.Background(), newAlloc(sessionID, 7))
	require.NoError(t, err)

	// 7 already allocated to another dean: only 3 remain
	_, err = svc.Allocate(context.Background(), newAlloc(sessionID, 4))
	requireFiberCode(t, err, fiber.StatusBadRequest)

	_, err = svc.Allocate(context.Background(), newAlloc(sessionID, 3))
	require.NoError(t, err)
}

func TestUpdateAllocation_CannotShrinkBelowUsed(t *testing.T) {
	store := newFakeStore()
	sessionID := uuid.New()
	store.sessionSlots[sessionID] = 20
	svc := NewQuotaService(store)

	alloc := newAlloc(sessionID, 10)
	_, err := svc.Allocate(context.Background(), alloc)
	require.NoError(t, err)
	alloc.DeanAllocationUsedPostings = 4

	_, err = svc.UpdateAllocation(context.Background(), alloc.DeanAllocationID, 3, nil)
	requireFiberCode(t, err, fiber.StatusBadRequest)

	updated, err := svc.UpdateAllocation(context.Background(), alloc.DeanAllocationID, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.DeanAllocationAllocatedPostings)
	assert.Zero(t, updated.Remaining())
}

func TestUpdateAllocation_PoolCeilingExcludesSelf(t *testing.T) {
	store := newFakeStore()
	sessionID := uuid.New()
	store.sessionSlots[sessionID] = 10
	svc := NewQuotaService(store)

	a, err := svc.Allocate(context.Background(), newAlloc(sessionID, 6))
	require.NoError(t, err)
	_, err = svc.Allocate(context.Background(), newAlloc(sessionID, 3))
	require.NoError(t, err)

	// growing a to 7 fits (3 held by the other dean), 8 does not
	_, err = svc.UpdateAllocation(context.Background(), a.DeanAllocationID, 7, nil)
	require.NoError(t, err)
	_, err = svc.UpdateAllocation(context.Background(), a.DeanAllocationID, 8, nil)
	requireFiberCode(t, err, fiber.StatusBadRequest)
}

func TestDelete_RefusedWhileInUse(t *testing.T) {
	store := newFakeStore()
	sessionID := uuid.New()
	store.sessionSlots[sessionID] = 20
	svc := NewQuotaService(store)

	alloc := newAlloc(sessionID, 5)
	_, err := svc.Allocate(context.Background(), alloc)
	require.NoError(t, err)

	alloc.DeanAllocationUsedPostings = 2
	err = svc.Delete(context.Background(), alloc.DeanAllocationID)
	requireFiberCode(t, err, fiber.StatusConflict)

	alloc.DeanAllocationUsedPostings = 0
	require.NoError(t, svc.Delete(context.Background(), alloc.DeanAllocationID))

	_, err = svc.Get(context.Background(), alloc.DeanAllocationID)
	requireFiberCode(t, err, fiber.StatusNotFound)
}

func TestRemainingFor(t *testing.T) {
	store := newFakeStore()
	sessionID := uuid.New()
	store.sessionSlots[sessionID] = 20
	svc := NewQuotaService(store)

	alloc := newAlloc(sessionID, 8)
	_, err := svc.Allocate(context.Background(), alloc)
	require.NoError(t, err)
	alloc.DeanAllocationUsedPostings = 3

	remaining, err := svc.RemainingFor(context.Background(), alloc.DeanAllocationDeanUserID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	_, err = svc.RemainingFor(context.Background(), uuid.New(), sessionID)
	requireFiberCode(t, err, fiber.StatusNotFound)
}
