// file: internals/features/teaching/postings/service/autopost_test.go
package service

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// autoPostFixture builds one school with `groups` practice groups, each group
// exposing visits 1..visits as open slots, plus `sups` idle supervisors.
func autoPostFixture(t *testing.T, groups, visits, sups int) (*fakeStores, *Engine) {
	t.Helper()
	f := newFakeStores(testPolicy())
	schoolID := uuid.New()
	for g := 1; g <= groups; g++ {
		f.addGroup(schoolID, g)
		for v := 1; v <= visits; v++ {
			f.slots = append(f.slots, OpenSlot{
				SchoolID:    schoolID,
				SchoolName:  "Demo Secondary School",
				GroupNumber: g,
				VisitNumber: v,
				DistanceKm:  8,
			})
		}
	}
	for i := 0; i < sups; i++ {
		supID := f.addSupervisor(testRank())
		f.pool = append(f.pool, SupervisorLoad{SupervisorID: supID, RankID: f.sups[supID].RankID})
	}
	return f, NewEngine(f)
}

func TestAutoPost_FillsAllSlots(t *testing.T) {
	f, engine := autoPostFixture(t, 2, 3, 3)

	res, err := engine.AutoPost(context.Background(), f.policy.SessionID, AutoPostOptions{}, Author{UserID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 6, res.Summary.SlotsConsidered)
	assert.Equal(t, 6, res.Summary.Assigned)
	assert.Zero(t, res.Summary.Unfilled)
}

func TestAutoPost_LoadBalancedRotation(t *testing.T) {
	f, engine := autoPostFixture(t, 2, 3, 3)

	res, err := engine.AutoPost(context.Background(), f.policy.SessionID, AutoPostOptions{}, Author{UserID: uuid.New()})
	require.NoError(t, err)
	require.Equal(t, 6, res.Summary.Assigned)

	// 6 slots over 3 supervisors: everyone gets exactly 2
	perSup := map[uuid.UUID]int{}
	for _, a := range res.Assigned {
		perSup[a.SupervisorID]++
	}
	require.Len(t, perSup, 3)
	for supID, n := range perSup {
		assert.Equal(t, 2, n, "supervisor %s got an uneven share", supID)
	}
}

func TestAutoPost_Deterministic(t *testing.T) {
	// pinned IDs so both runs see identical pools and slots
	rank := testRank()
	schoolID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("school"))

	run := func() []Assignment {
		f := newFakeStores(testPolicy())
		f.policy.SessionID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("session"))
		f.ranks[rank.RankID] = rank
		for g := 1; g <= 2; g++ {
			f.addGroup(schoolID, g)
			for v := 1; v <= 2; v++ {
				f.slots = append(f.slots, OpenSlot{SchoolID: schoolID, GroupNumber: g, VisitNumber: v, DistanceKm: 8})
			}
		}
		for i := 0; i < 3; i++ {
			supID := uuid.NewSHA1(uuid.NameSpaceOID, []byte{'s', byte(i)})
			f.sups[supID] = SupervisorInfo{SupervisorID: supID, RankID: rank.RankID}
			f.pool = append(f.pool, SupervisorLoad{SupervisorID: supID, RankID: rank.RankID})
		}
		res, err := NewEngine(f).AutoPost(context.Background(), f.policy.SessionID, AutoPostOptions{}, Author{UserID: uuid.New()})
		require.NoError(t, err)
		return res.Assigned
	}

	first, second := run(), run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].SupervisorID, second[i].SupervisorID, "assignment %d diverged", i)
		assert.Equal(t, first[i].Slot, second[i].Slot)
	}
}

func TestAutoPost_MaxAssignmentsCap(t *testing.T) {
	f, engine := autoPostFixture(t, 2, 3, 3)

	res, err := engine.AutoPost(context.Background(), f.policy.SessionID,
		AutoPostOptions{MaxAssignments: 2}, Author{UserID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Summary.Assigned)
	assert.Equal(t, 4, res.Summary.Unfilled)
	for _, u := range res.Unfilled {
		assert.Equal(t, "assignment cap reached", u.Reason)
	}
}

func TestAutoPost_EmptyPoolReportsUnfilled(t *testing.T) {
	f, engine := autoPostFixture(t, 1, 2, 0)

	res, err := engine.AutoPost(context.Background(), f.policy.SessionID, AutoPostOptions{}, Author{UserID: uuid.New()})
	require.NoError(t, err)

	assert.Zero(t, res.Summary.Assigned)
	assert.Equal(t, 2, res.Summary.Unfilled)
	for _, u := range res.Unfilled {
		assert.Equal(t, "no eligible supervisors", u.Reason)
	}
}

func TestAutoPost_QuotaBoundDeanCappedByRemaining(t *testing.T) {
	f, engine := autoPostFixture(t, 2, 3, 3)
	dean := Author{UserID: uuid.New(), QuotaBound: true}
	f.quotas[dean.UserID] = &fakeQuota{Allocated: 4, Used: 1}

	res, err := engine.AutoPost(context.Background(), f.policy.SessionID, AutoPostOptions{}, dean)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Summary.Assigned)
	assert.Equal(t, 4, f.quotas[dean.UserID].Used)
}

func TestAutoPost_QuotaBoundDeanWithoutAllocation(t *testing.T) {
	f, engine := autoPostFixture(t, 1, 1, 1)
	dean := Author{UserID: uuid.New(), QuotaBound: true}

	_, err := engine.AutoPost(context.Background(), f.policy.SessionID, AutoPostOptions{}, dean)
	require.Error(t, err)
	assert.Equal(t, fiber.StatusConflict, fiberCode(t, err))
}

func TestAutoPost_SkipsSlotsAlreadyTaken(t *testing.T) {
	f, engine := autoPostFixture(t, 1, 3, 2)

	// pre-assign visit 2 manually
	supID := f.pool[0].SupervisorID
	_, _, err := engine.commitCandidate(context.Background(), f.policy, Candidate{
		SessionID: f.policy.SessionID, SupervisorID: supID,
		SchoolID: f.slots[0].SchoolID, GroupNumber: 1, VisitNumber: 2, DistanceKm: 8,
	}, Author{UserID: uuid.New()})
	require.NoError(t, err)

	res, err := engine.AutoPost(context.Background(), f.policy.SessionID, AutoPostOptions{}, Author{UserID: uuid.New()})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Summary.SlotsConsidered, "taken slot must not be offered")
	assert.Equal(t, 2, res.Summary.Assigned)
}

func TestPreviewAllowance(t *testing.T) {
	f := newFakeStores(testPolicy())
	rank := testRank()
	f.ranks[rank.RankID] = rank
	engine := NewEngine(f)

	b, err := engine.PreviewAllowance(context.Background(), f.policy.SessionID, rank.RankID, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, 4500.0, b.PerVisitTotal)
	assert.Equal(t, 9000.0, b.GrandTotal)

	_, err = engine.PreviewAllowance(context.Background(), f.policy.SessionID, uuid.New(), 20, 1)
	require.Error(t, err)
	assert.Equal(t, fiber.StatusNotFound, fiberCode(t, err))
}
