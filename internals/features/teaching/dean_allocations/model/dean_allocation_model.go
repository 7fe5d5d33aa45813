// file: internals/features/teaching/dean_allocations/model/dean_allocation_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Model: dean_allocations
   ========================= */

// DeanAllocationModel caps the number of primary postings a delegated dean may
// create within a session. allocated >= used always (also a DB CHECK).
type DeanAllocationModel struct {
	DeanAllocationID         uuid.UUID  `json:"dean_allocation_id" gorm:"column:dean_allocation_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	DeanAllocationDeanUserID uuid.UUID  `json:"dean_allocation_dean_user_id" gorm:"column:dean_allocation_dean_user_id;type:uuid;not null"`
	DeanAllocationSessionID  uuid.UUID  `json:"dean_allocation_session_id" gorm:"column:dean_allocation_session_id;type:uuid;not null"`
	DeanAllocationFacultyID  *uuid.UUID `json:"dean_allocation_faculty_id,omitempty" gorm:"column:dean_allocation_faculty_id;type:uuid"`

	DeanAllocationAllocatedPostings int     `json:"dean_allocation_allocated_postings" gorm:"column:dean_allocation_allocated_postings;not null;default:0"`
	DeanAllocationUsedPostings      int     `json:"dean_allocation_used_postings" gorm:"column:dean_allocation_used_postings;not null;default:0"`
	DeanAllocationNotes             *string `json:"dean_allocation_notes,omitempty" gorm:"column:dean_allocation_notes;type:text"`

	DeanAllocationCreatedAt time.Time `json:"dean_allocation_created_at" gorm:"column:dean_allocation_created_at;type:timestamptz;not null;default:now()"`
	DeanAllocationUpdatedAt time.Time `json:"dean_allocation_updated_at" gorm:"column:dean_allocation_updated_at;type:timestamptz;not null;default:now()"`
}

func (DeanAllocationModel) TableName() string { return "dean_allocations" }

func (m *DeanAllocationModel) BeforeUpdate(tx *gorm.DB) error {
	m.DeanAllocationUpdatedAt = time.Now().UTC()
	return nil
}

// Remaining is the quota headroom still available to the dean.
func (m *DeanAllocationModel) Remaining() int {
	return m.DeanAllocationAllocatedPostings - m.DeanAllocationUsedPostings
}

/* =========================
   Scopes
   ========================= */

func ScopeAllocationBySession(sessionID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("dean_allocation_session_id = ?", sessionID)
	}
}
