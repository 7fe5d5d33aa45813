// file: internals/features/teaching/postings/service/stores.go
package service

import (
	"context"
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	damodel "tpms_backend/internals/features/teaching/dean_allocations/model"
	pmodel "tpms_backend/internals/features/teaching/postings/model"
	smodel "tpms_backend/internals/features/teaching/schools/model"
	sessmodel "tpms_backend/internals/features/teaching/sessions/model"
	supmodel "tpms_backend/internals/features/teaching/supervisors/model"
)

/* =========================
   Collaborator interfaces
   ========================= */

// Stores is everything the posting engine needs from persisted state. Session,
// rank, group and cluster data are read-only collaborators; postings and dean
// quotas are written through here. WithinTx rebinds the whole set onto one
// transaction so primary + dependents + quota commit or roll back together.
type Stores interface {
	SessionPolicy(ctx context.Context, sessionID uuid.UUID) (SessionPolicy, error)
	RankRates(ctx context.Context, rankID uuid.UUID) (RankRates, error)
	SupervisorInfo(ctx context.Context, supervisorID uuid.UUID) (SupervisorInfo, error)
	GroupInfo(ctx context.Context, schoolID, sessionID uuid.UUID, groupNumber int) (GroupInfo, error)
	MergedClusterMembers(ctx context.Context, schoolID uuid.UUID, groupNumber int) ([]uuid.UUID, error)

	// FindActivePosting returns nil when the slot is free. primaryOnly narrows
	// the search to primary postings (the uniqueness invariant); the wide form
	// is used by the propagation idempotence guard.
	FindActivePosting(ctx context.Context, sessionID, schoolID uuid.UUID, groupNumber, visitNumber int, primaryOnly bool) (*pmodel.SupervisorPostingModel, error)
	CountActiveVisits(ctx context.Context, supervisorID, sessionID uuid.UUID) (int, error)
	CreatePosting(ctx context.Context, posting *pmodel.SupervisorPostingModel) error
	GetPosting(ctx context.Context, postingID uuid.UUID) (*pmodel.SupervisorPostingModel, error)
	CancelPosting(ctx context.Context, postingID uuid.UUID) error
	CancelDependents(ctx context.Context, primaryID uuid.UUID) (int64, error)

	QuotaRemaining(ctx context.Context, deanUserID, sessionID uuid.UUID) (remaining int, found bool, err error)
	ConsumeQuota(ctx context.Context, deanUserID, sessionID uuid.UUID, n int) error
	ReleaseQuota(ctx context.Context, deanUserID, sessionID uuid.UUID, n int) error

	ListOpenSlots(ctx context.Context, sessionID uuid.UUID, facultyID *uuid.UUID) ([]OpenSlot, error)
	ListEligibleSupervisors(ctx context.Context, sessionID uuid.UUID, facultyID *uuid.UUID) ([]SupervisorLoad, error)

	WithinTx(ctx context.Context, fn func(Stores) error) error
}

/* =========================
   GORM implementation
   ========================= */

type gormStores struct {
	db *gorm.DB
}

func NewGormStores(db *gorm.DB) Stores { return &gormStores{db: db} }

func (s *gormStores) SessionPolicy(ctx context.Context, sessionID uuid.UUID) (SessionPolicy, error) {
	var sess sessmodel.AcademicSessionModel
	err := s.db.WithContext(ctx).
		Where("academic_session_id = ?", sessionID).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SessionPolicy{}, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	if err != nil {
		return SessionPolicy{}, err
	}
	return SessionPolicy{
		SessionID:                 sess.AcademicSessionID,
		InsideDistanceThresholdKm: sess.AcademicSessionInsideDistanceThresholdKm,
		DsaEnabled:                sess.AcademicSessionDsaEnabled,
		DsaMinDistanceKm:          sess.AcademicSessionDsaMinDistanceKm,
		DsaMaxDistanceKm:          sess.AcademicSessionDsaMaxDistanceKm,
		DsaPercentage:             sess.AcademicSessionDsaPercentage,
		MaxSupervisionVisits:      sess.AcademicSessionMaxSupervisionVisits,
		EnforceVisitCap:           sess.AcademicSessionEnforceVisitCap,
	}, nil
}

func (s *gormStores) RankRates(ctx context.Context, rankID uuid.UUID) (RankRates, error) {
	var rank sessmodel.SupervisorRankModel
	err := s.db.WithContext(ctx).
		Where("supervisor_rank_id = ?", rankID).
		First(&rank).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RankRates{}, fiber.NewError(fiber.StatusNotFound, "rank not found")
	}
	if err != nil {
		return RankRates{}, err
	}
	return RankRates{
		RankID:                rank.SupervisorRankID,
		Name:                  rank.SupervisorRankName,
		LocalRunningAllowance: rank.SupervisorRankLocalRunningAllowance,
		TransportPerKm:        rank.SupervisorRankTransportPerKm,
		Dsa:                   rank.SupervisorRankDsa,
		Dta:                   rank.SupervisorRankDta,
		Tetfund:               rank.SupervisorRankTetfund,
		OtherAllowances:       rank.OtherAllowanceAmounts(),
	}, nil
}

func (s *gormStores) SupervisorInfo(ctx context.Context, supervisorID uuid.UUID) (SupervisorInfo, error) {
	var sup supmodel.SupervisorModel
	err := s.db.WithContext(ctx).
		Scopes(supmodel.ScopeSupervisorActive).
		Where("supervisor_id = ?", supervisorID).
		First(&sup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SupervisorInfo{}, fiber.NewError(fiber.StatusNotFound, "supervisor not found")
	}
	if err != nil {
		return SupervisorInfo{}, err
	}
	return SupervisorInfo{
		SupervisorID: sup.SupervisorID,
		RankID:       sup.SupervisorRankID,
		FacultyID:    sup.SupervisorFacultyID,
	}, nil
}

func (s *gormStores) GroupInfo(ctx context.Context, schoolID, sessionID uuid.UUID, groupNumber int) (GroupInfo, error) {
	var group smodel.PracticeGroupModel
	err := s.db.WithContext(ctx).
		Scopes(smodel.ScopeGroupBySession(sessionID)).
		Where("practice_group_school_id = ? AND practice_group_number = ?", schoolID, groupNumber).
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return GroupInfo{}, fiber.NewError(fiber.StatusNotFound, "practice group not found")
	}
	if err != nil {
		return GroupInfo{}, err
	}

	policy, err := s.SessionPolicy(ctx, sessionID)
	if err != nil {
		return GroupInfo{}, err
	}

	var occupied []int
	if err := s.db.WithContext(ctx).
		Model(&pmodel.SupervisorPostingModel{}).
		Scopes(pmodel.ScopeActive, pmodel.ScopePrimary, pmodel.ScopeBySession(sessionID)).
		Where("supervisor_posting_school_id = ? AND supervisor_posting_group_number = ?", schoolID, groupNumber).
		Pluck("supervisor_posting_visit_number", &occupied).Error; err != nil {
		return GroupInfo{}, err
	}

	taken := make(map[int]bool, len(occupied))
	for _, v := range occupied {
		taken[v] = true
	}
	available := make([]int, 0, policy.MaxSupervisionVisits)
	for v := 1; v <= policy.MaxSupervisionVisits; v++ {
		if !taken[v] {
			available = append(available, v)
		}
	}

	return GroupInfo{
		SchoolID:        schoolID,
		GroupNumber:     groupNumber,
		StudentCount:    group.PracticeGroupStudentCount,
		AvailableVisits: available,
	}, nil
}

func (s *gormStores) MergedClusterMembers(ctx context.Context, schoolID uuid.UUID, groupNumber int) ([]uuid.UUID, error) {
	var membership smodel.MergedSchoolClusterModel
	err := s.db.WithContext(ctx).
		Where("merged_school_cluster_school_id = ? AND merged_school_cluster_group_number = ?", schoolID, groupNumber).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // not merged with anything
	}
	if err != nil {
		return nil, err
	}

	var members []uuid.UUID
	err = s.db.WithContext(ctx).
		Model(&smodel.MergedSchoolClusterModel{}).
		Where("merged_school_cluster_key = ? AND merged_school_cluster_group_number = ?", membership.MergedSchoolClusterKey, groupNumber).
		Where("merged_school_cluster_school_id <> ?", schoolID).
		Pluck("merged_school_cluster_school_id", &members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *gormStores) FindActivePosting(ctx context.Context, sessionID, schoolID uuid.UUID, groupNumber, visitNumber int, primaryOnly bool) (*pmodel.SupervisorPostingModel, error) {
	q := s.db.WithContext(ctx).
		Scopes(pmodel.ScopeActive, pmodel.ScopeBySession(sessionID), pmodel.ScopeBySlot(schoolID, groupNumber, visitNumber))
	if primaryOnly {
		q = q.Scopes(pmodel.ScopePrimary)
	}
	var posting pmodel.SupervisorPostingModel
	err := q.First(&posting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &posting, nil
}

func (s *gormStores) CountActiveVisits(ctx context.Context, supervisorID, sessionID uuid.UUID) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&pmodel.SupervisorPostingModel{}).
		Scopes(pmodel.ScopeActive, pmodel.ScopeBySession(sessionID), pmodel.ScopeBySupervisor(supervisorID)).
		Count(&count).Error
	return int(count), err
}

func (s *gormStores) CreatePosting(ctx context.Context, posting *pmodel.SupervisorPostingModel) error {
	return s.db.WithContext(ctx).Create(posting).Error
}

func (s *gormStores) GetPosting(ctx context.Context, postingID uuid.UUID) (*pmodel.SupervisorPostingModel, error) {
	var posting pmodel.SupervisorPostingModel
	err := s.db.WithContext(ctx).
		Where("supervisor_posting_id = ?", postingID).
		First(&posting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "posting not found")
	}
	if err != nil {
		return nil, err
	}
	return &posting, nil
}

func (s *gormStores) CancelPosting(ctx context.Context, postingID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&pmodel.SupervisorPostingModel{}).
		Where("supervisor_posting_id = ?", postingID).
		Where("supervisor_posting_status = ?", pmodel.PostingStatusActive).
		UpdateColumns(map[string]any{
			"supervisor_posting_status":     pmodel.PostingStatusCancelled,
			"supervisor_posting_updated_at": gorm.Expr("now()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusConflict, "posting is not active")
	}
	return nil
}

func (s *gormStores) CancelDependents(ctx context.Context, primaryID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&pmodel.SupervisorPostingModel{}).
		Where("supervisor_posting_merged_with_id = ?", primaryID).
		Where("supervisor_posting_status = ?", pmodel.PostingStatusActive).
		UpdateColumns(map[string]any{
			"supervisor_posting_status":     pmodel.PostingStatusCancelled,
			"supervisor_posting_updated_at": gorm.Expr("now()"),
		})
	return res.RowsAffected, res.Error
}

func (s *gormStores) QuotaRemaining(ctx context.Context, deanUserID, sessionID uuid.UUID) (int, bool, error) {
	var alloc damodel.DeanAllocationModel
	err := s.db.WithContext(ctx).
		Scopes(damodel.ScopeAllocationBySession(sessionID)).
		Where("dean_allocation_dean_user_id = ?", deanUserID).
		First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return alloc.Remaining(), true, nil
}

// ConsumeQuota is a guarded increment: the WHERE clause keeps used <= allocated
// even when two batches race on the same allocation.
func (s *gormStores) ConsumeQuota(ctx context.Context, deanUserID, sessionID uuid.UUID, n int) error {
	res := s.db.WithContext(ctx).
		Model(&damodel.DeanAllocationModel{}).
		Scopes(damodel.ScopeAllocationBySession(sessionID)).
		Where("dean_allocation_dean_user_id = ?", deanUserID).
		Where("dean_allocation_allocated_postings - dean_allocation_used_postings >= ?", n).
		UpdateColumns(map[string]any{
			"dean_allocation_used_postings": gorm.Expr("dean_allocation_used_postings + ?", n),
			"dean_allocation_updated_at":    gorm.Expr("now()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusConflict, "dean allocation exhausted")
	}
	return nil
}

// ReleaseQuota decrements on cancellation. A zero row count is not an error:
// the posting may have been authored by an unbound admin.
func (s *gormStores) ReleaseQuota(ctx context.Context, deanUserID, sessionID uuid.UUID, n int) error {
	return s.db.WithContext(ctx).
		Model(&damodel.DeanAllocationModel{}).
		Scopes(damodel.ScopeAllocationBySession(sessionID)).
		Where("dean_allocation_dean_user_id = ?", deanUserID).
		Where("dean_allocation_used_postings >= ?", n).
		UpdateColumns(map[string]any{
			"dean_allocation_used_postings": gorm.Expr("dean_allocation_used_postings - ?", n),
			"dean_allocation_updated_at":    gorm.Expr("now()"),
		}).Error
}

func (s *gormStores) ListOpenSlots(ctx context.Context, sessionID uuid.UUID, facultyID *uuid.UUID) ([]OpenSlot, error) {
	policy, err := s.SessionPolicy(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	type groupRow struct {
		SchoolID    uuid.UUID
		SchoolName  string
		GroupNumber int
		DistanceKm  float64
	}
	q := s.db.WithContext(ctx).
		Model(&smodel.PracticeGroupModel{}).
		Select("practice_group_school_id AS school_id, schools.school_name AS school_name, practice_group_number AS group_number, schools.school_distance_km AS distance_km").
		Joins("JOIN schools ON schools.school_id = practice_group_school_id").
		Scopes(smodel.ScopeGroupBySession(sessionID))
	if facultyID != nil {
		q = q.Where("schools.school_faculty_id = ?", *facultyID)
	}
	var groups []groupRow
	if err := q.Scan(&groups).Error; err != nil {
		return nil, err
	}

	type slotRow struct {
		SchoolID    uuid.UUID
		GroupNumber int
		VisitNumber int
	}
	var occupied []slotRow
	if err := s.db.WithContext(ctx).
		Model(&pmodel.SupervisorPostingModel{}).
		Select("supervisor_posting_school_id AS school_id, supervisor_posting_group_number AS group_number, supervisor_posting_visit_number AS visit_number").
		Scopes(pmodel.ScopeActive, pmodel.ScopePrimary, pmodel.ScopeBySession(sessionID)).
		Scan(&occupied).Error; err != nil {
		return nil, err
	}
	taken := make(map[SlotKey]bool, len(occupied))
	for _, o := range occupied {
		taken[SlotKey{SchoolID: o.SchoolID, GroupNumber: o.GroupNumber, VisitNumber: o.VisitNumber}] = true
	}

	var slots []OpenSlot
	for _, g := range groups {
		for v := 1; v <= policy.MaxSupervisionVisits; v++ {
			if taken[SlotKey{SchoolID: g.SchoolID, GroupNumber: g.GroupNumber, VisitNumber: v}] {
				continue
			}
			slots = append(slots, OpenSlot{
				SchoolID:    g.SchoolID,
				SchoolName:  g.SchoolName,
				GroupNumber: g.GroupNumber,
				VisitNumber: v,
				DistanceKm:  g.DistanceKm,
			})
		}
	}
	return slots, nil
}

func (s *gormStores) ListEligibleSupervisors(ctx context.Context, sessionID uuid.UUID, facultyID *uuid.UUID) ([]SupervisorLoad, error) {
	q := s.db.WithContext(ctx).Scopes(supmodel.ScopeSupervisorActive)
	if facultyID != nil {
		q = q.Scopes(supmodel.ScopeSupervisorByFaculty(*facultyID))
	}
	var sups []supmodel.SupervisorModel
	if err := q.Find(&sups).Error; err != nil {
		return nil, err
	}

	type countRow struct {
		SupervisorID uuid.UUID
		Visits       int
	}
	var counts []countRow
	if err := s.db.WithContext(ctx).
		Model(&pmodel.SupervisorPostingModel{}).
		Select("supervisor_posting_supervisor_id AS supervisor_id, COUNT(*) AS visits").
		Scopes(pmodel.ScopeActive, pmodel.ScopeBySession(sessionID)).
		Group("supervisor_posting_supervisor_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	visitsBy := make(map[uuid.UUID]int, len(counts))
	for _, c := range counts {
		visitsBy[c.SupervisorID] = c.Visits
	}

	out := make([]SupervisorLoad, 0, len(sups))
	for _, sup := range sups {
		out = append(out, SupervisorLoad{
			SupervisorID:  sup.SupervisorID,
			FullName:      sup.SupervisorFullName,
			RankID:        sup.SupervisorRankID,
			FacultyID:     sup.SupervisorFacultyID,
			CurrentVisits: visitsBy[sup.SupervisorID],
		})
	}
	// stable base order before the allocator applies its comparator
	sort.Slice(out, func(i, j int) bool {
		return out[i].SupervisorID.String() < out[j].SupervisorID.String()
	})
	return out, nil
}

func (s *gormStores) WithinTx(ctx context.Context, fn func(Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStores{db: tx})
	})
}
