// file: internals/features/teaching/postings/service/fake_stores_test.go
package service

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	pmodel "tpms_backend/internals/features/teaching/postings/model"
)

/* =========================
   In-memory Stores for tests
   ========================= */

type groupKey struct {
	SchoolID    uuid.UUID
	GroupNumber int
}

type fakeQuota struct {
	Allocated int
	Used      int
}

type fakeStores struct {
	policy   SessionPolicy
	ranks    map[uuid.UUID]RankRates
	sups     map[uuid.UUID]SupervisorInfo
	groups   map[groupKey]GroupInfo
	clusters map[groupKey][]uuid.UUID

	postings []*pmodel.SupervisorPostingModel
	quotas   map[uuid.UUID]*fakeQuota // by dean user id

	slots []OpenSlot
	pool  []SupervisorLoad
}

func newFakeStores(policy SessionPolicy) *fakeStores {
	return &fakeStores{
		policy:   policy,
		ranks:    map[uuid.UUID]RankRates{},
		sups:     map[uuid.UUID]SupervisorInfo{},
		groups:   map[groupKey]GroupInfo{},
		clusters: map[groupKey][]uuid.UUID{},
		quotas:   map[uuid.UUID]*fakeQuota{},
	}
}

func (f *fakeStores) addSupervisor(rank RankRates) uuid.UUID {
	supID := uuid.New()
	f.ranks[rank.RankID] = rank
	f.sups[supID] = SupervisorInfo{SupervisorID: supID, RankID: rank.RankID}
	return supID
}

func (f *fakeStores) addGroup(schoolID uuid.UUID, groupNumber int) {
	f.groups[groupKey{schoolID, groupNumber}] = GroupInfo{
		SchoolID:    schoolID,
		GroupNumber: groupNumber,
	}
}

func (f *fakeStores) SessionPolicy(_ context.Context, sessionID uuid.UUID) (SessionPolicy, error) {
	if sessionID != f.policy.SessionID {
		return SessionPolicy{}, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return f.policy, nil
}

func (f *fakeStores) RankRates(_ context.Context, rankID uuid.UUID) (RankRates, error) {
	rank, ok := f.ranks[rankID]
	if !ok {
		return RankRates{}, fiber.NewError(fiber.StatusNotFound, "rank not found")
	}
	return rank, nil
}

func (f *fakeStores) SupervisorInfo(_ context.Context, supervisorID uuid.UUID) (SupervisorInfo, error) {
	sup, ok := f.sups[supervisorID]
	if !ok {
		return SupervisorInfo{}, fiber.NewError(fiber.StatusNotFound, "supervisor not found")
	}
	return sup, nil
}

func (f *fakeStores) GroupInfo(_ context.Context, schoolID, _ uuid.UUID, groupNumber int) (GroupInfo, error) {
	g, ok := f.groups[groupKey{schoolID, groupNumber}]
	if !ok {
		return GroupInfo{}, fiber.NewError(fiber.StatusNotFound, "practice group not found")
	}
	return g, nil
}

func (f *fakeStores) MergedClusterMembers(_ context.Context, schoolID uuid.UUID, groupNumber int) ([]uuid.UUID, error) {
	return f.clusters[groupKey{schoolID, groupNumber}], nil
}

func (f *fakeStores) FindActivePosting(_ context.Context, sessionID, schoolID uuid.UUID, groupNumber, visitNumber int, primaryOnly bool) (*pmodel.SupervisorPostingModel, error) {
	for _, p := range f.postings {
		if p.SupervisorPostingStatus != pmodel.PostingStatusActive {
			continue
		}
		if p.SupervisorPostingSessionID != sessionID ||
			p.SupervisorPostingSchoolID != schoolID ||
			p.SupervisorPostingGroupNumber != groupNumber ||
			p.SupervisorPostingVisitNumber != visitNumber {
			continue
		}
		if primaryOnly && !p.SupervisorPostingIsPrimary {
			continue
		}
		return p, nil
	}
	return nil, nil
}

func (f *fakeStores) CountActiveVisits(_ context.Context, supervisorID, sessionID uuid.UUID) (int, error) {
	n := 0
	for _, p := range f.postings {
		if p.SupervisorPostingStatus == pmodel.PostingStatusActive &&
			p.SupervisorPostingSessionID == sessionID &&
			p.SupervisorPostingSupervisorID == supervisorID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStores) CreatePosting(_ context.Context, posting *pmodel.SupervisorPostingModel) error {
	f.postings = append(f.postings, posting)
	return nil
}

func (f *fakeStores) GetPosting(_ context.Context, postingID uuid.UUID) (*pmodel.SupervisorPostingModel, error) {
	for _, p := range f.postings {
		if p.SupervisorPostingID == postingID {
			return p, nil
		}
	}
	return nil, fiber.NewError(fiber.StatusNotFound, "posting not found")
}

func (f *fakeStores) CancelPosting(_ context.Context, postingID uuid.UUID) error {
	for _, p := range f.postings {
		if p.SupervisorPostingID == postingID {
			if p.SupervisorPostingStatus != pmodel.PostingStatusActive {
				return fiber.NewError(fiber.StatusConflict, "posting is not active")
			}
			p.SupervisorPostingStatus = pmodel.PostingStatusCancelled
			return nil
		}
	}
	return fiber.NewError(fiber.StatusNotFound, "posting not found")
}

func (f *fakeStores) CancelDependents(_ context.Context, primaryID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range f.postings {
		if p.SupervisorPostingMergedWithID != nil &&
			*p.SupervisorPostingMergedWithID == primaryID &&
			p.SupervisorPostingStatus == pmodel.PostingStatusActive {
			p.SupervisorPostingStatus = pmodel.PostingStatusCancelled
			n++
		}
	}
	return n, nil
}

func (f *fakeStores) QuotaRemaining(_ context.Context, deanUserID, _ uuid.UUID) (int, bool, error) {
	q, ok := f.quotas[deanUserID]
	if !ok {
		return 0, false, nil
	}
	return q.Allocated - q.Used, true, nil
}

func (f *fakeStores) ConsumeQuota(_ context.Context, deanUserID, _ uuid.UUID, n int) error {
	q, ok := f.quotas[deanUserID]
	if !ok || q.Allocated-q.Used < n {
		return fiber.NewError(fiber.StatusConflict, "dean allocation exhausted")
	}
	q.Used += n
	return nil
}

func (f *fakeStores) ReleaseQuota(_ context.Context, deanUserID, _ uuid.UUID, n int) error {
	if q, ok := f.quotas[deanUserID]; ok && q.Used >= n {
		q.Used -= n
	}
	return nil
}

func (f *fakeStores) ListOpenSlots(_ context.Context, _ uuid.UUID, _ *uuid.UUID) ([]OpenSlot, error) {
	open := make([]OpenSlot, 0, len(f.slots))
	for _, s := range f.slots {
		taken, _ := f.FindActivePosting(context.Background(), f.policy.SessionID, s.SchoolID, s.GroupNumber, s.VisitNumber, true)
		if taken == nil {
			open = append(open, s)
		}
	}
	return open, nil
}

func (f *fakeStores) ListEligibleSupervisors(_ context.Context, _ uuid.UUID, _ *uuid.UUID) ([]SupervisorLoad, error) {
	out := make([]SupervisorLoad, len(f.pool))
	copy(out, f.pool)
	return out, nil
}

// WithinTx snapshots the mutable state and restores it when fn fails, so the
// engine's all-or-nothing commit semantics hold in tests too.
func (f *fakeStores) WithinTx(_ context.Context, fn func(Stores) error) error {
	savedPostings := len(f.postings)
	savedUsed := make(map[uuid.UUID]int, len(f.quotas))
	for id, q := range f.quotas {
		savedUsed[id] = q.Used
	}

	if err := fn(f); err != nil {
		f.postings = f.postings[:savedPostings]
		for id, used := range savedUsed {
			f.quotas[id].Used = used
		}
		return err
	}
	return nil
}

/* =========================
   Shared fixtures
   ========================= */

func testPolicy() SessionPolicy {
	return SessionPolicy{
		SessionID:                 uuid.New(),
		InsideDistanceThresholdKm: 10,
		DsaEnabled:                true,
		DsaMinDistanceKm:          11,
		DsaMaxDistanceKm:          30,
		DsaPercentage:             50,
		MaxSupervisionVisits:      3,
	}
}

func testRank() RankRates {
	return RankRates{
		RankID:                uuid.New(),
		Name:                  "Senior Lecturer",
		LocalRunningAllowance: 2000,
		TransportPerKm:        50,
		Dsa:                   0,
		Dta:                   5000,
		Tetfund:               1000,
	}
}
