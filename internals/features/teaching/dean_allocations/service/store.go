// file: internals/features/teaching/dean_allocations/service/store.go
package service

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	model "tpms_backend/internals/features/teaching/dean_allocations/model"
	smodel "tpms_backend/internals/features/teaching/schools/model"
	sessmodel "tpms_backend/internals/features/teaching/sessions/model"
)

type gormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) Store { return &gormStore{db: db} }

// pgSQLErr matches pgconn.PgError without importing the driver directly.
type pgSQLErr interface {
	SQLState() string
	Error() string
}

func (s *gormStore) CreateAllocation(ctx context.Context, alloc *model.DeanAllocationModel) error {
	err := s.db.WithContext(ctx).Create(alloc).Error
	var pgErr pgSQLErr
	if errors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
		// lost a race with a concurrent Allocate for the same dean
		return fiber.NewError(fiber.StatusConflict, "an allocation already exists for this dean in this session")
	}
	return err
}

func (s *gormStore) AllocationByID(ctx context.Context, id uuid.UUID) (*model.DeanAllocationModel, error) {
	var alloc model.DeanAllocationModel
	err := s.db.WithContext(ctx).
		Where("dean_allocation_id = ?", id).
		First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "allocation not found")
	}
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (s *gormStore) AllocationByDean(ctx context.Context, deanUserID, sessionID uuid.UUID) (*model.DeanAllocationModel, error) {
	var alloc model.DeanAllocationModel
	err := s.db.WithContext(ctx).
		Scopes(model.ScopeAllocationBySession(sessionID)).
		Where("dean_allocation_dean_user_id = ?", deanUserID).
		First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (s *gormStore) ListAllocations(ctx context.Context, sessionID uuid.UUID, offset, limit int) ([]model.DeanAllocationModel, int64, error) {
	q := s.db.WithContext(ctx).
		Model(&model.DeanAllocationModel{}).
		Scopes(model.ScopeAllocationBySession(sessionID))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.DeanAllocationModel
	err := q.Order("dean_allocation_created_at").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (s *gormStore) SaveAllocation(ctx context.Context, alloc *model.DeanAllocationModel) error {
	return s.db.WithContext(ctx).Save(alloc).Error
}

func (s *gormStore) DeleteAllocation(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("dean_allocation_id = ?", id).
		Delete(&model.DeanAllocationModel{}).Error
}

func (s *gormStore) SumAllocated(ctx context.Context, sessionID uuid.UUID, excludeID uuid.UUID) (int, error) {
	q := s.db.WithContext(ctx).
		Model(&model.DeanAllocationModel{}).
		Scopes(model.ScopeAllocationBySession(sessionID))
	if excludeID != uuid.Nil {
		q = q.Where("dean_allocation_id <> ?", excludeID)
	}
	var sum *int
	if err := q.Select("SUM(dean_allocation_allocated_postings)").Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// CountSessionSlots = practice groups in the session × max supervision visits.
func (s *gormStore) CountSessionSlots(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var sess sessmodel.AcademicSessionModel
	err := s.db.WithContext(ctx).
		Where("academic_session_id = ?", sessionID).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	if err != nil {
		return 0, err
	}

	var groups int64
	if err := s.db.WithContext(ctx).
		Model(&smodel.PracticeGroupModel{}).
		Scopes(smodel.ScopeGroupBySession(sessionID)).
		Count(&groups).Error; err != nil {
		return 0, err
	}
	return int(groups) * sess.AcademicSessionMaxSupervisionVisits, nil
}
