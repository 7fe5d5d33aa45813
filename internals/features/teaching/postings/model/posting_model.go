// file: internals/features/teaching/postings/model/posting_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PostingStatusActive    = "active"
	PostingStatusCancelled = "cancelled"

	DistanceCategoryInside  = "INSIDE"
	DistanceCategoryOutside = "OUTSIDE"
)

/* =========================
   Model: supervisor_postings
   ========================= */

// SupervisorPostingModel — one supervisor's assignment to one
// (session, school, group, visit) slot. Primary postings carry the allowance;
// dependent postings (merged-group coverage) always carry zeros and point back
// at their primary via supervisor_posting_merged_with_id.
//
// At most one ACTIVE PRIMARY posting may exist per slot; the partial unique
// index ux_supervisor_postings_active_primary_slot is authoritative.
type SupervisorPostingModel struct {
	SupervisorPostingID uuid.UUID `json:"supervisor_posting_id" gorm:"column:supervisor_posting_id;type:uuid;primaryKey;default:gen_random_uuid()"`

	// slot identity
	SupervisorPostingSessionID   uuid.UUID `json:"supervisor_posting_session_id" gorm:"column:supervisor_posting_session_id;type:uuid;not null"`
	SupervisorPostingSchoolID    uuid.UUID `json:"supervisor_posting_school_id" gorm:"column:supervisor_posting_school_id;type:uuid;not null"`
	SupervisorPostingGroupNumber int       `json:"supervisor_posting_group_number" gorm:"column:supervisor_posting_group_number;not null"`
	SupervisorPostingVisitNumber int       `json:"supervisor_posting_visit_number" gorm:"column:supervisor_posting_visit_number;not null"`

	SupervisorPostingSupervisorID uuid.UUID `json:"supervisor_posting_supervisor_id" gorm:"column:supervisor_posting_supervisor_id;type:uuid;not null"`
	SupervisorPostingDistanceKm   float64   `json:"supervisor_posting_distance_km" gorm:"column:supervisor_posting_distance_km;type:numeric(8,2);not null;default:0"`

	SupervisorPostingIsPrimary    bool       `json:"supervisor_posting_is_primary" gorm:"column:supervisor_posting_is_primary;not null;default:true"`
	SupervisorPostingMergedWithID *uuid.UUID `json:"supervisor_posting_merged_with_id,omitempty" gorm:"column:supervisor_posting_merged_with_id;type:uuid"`

	// allowance breakdown (never mutated after computation, except status)
	SupervisorPostingTransport    float64 `json:"supervisor_posting_transport" gorm:"column:supervisor_posting_transport;type:numeric(12,2);not null;default:0"`
	SupervisorPostingDsa          float64 `json:"supervisor_posting_dsa" gorm:"column:supervisor_posting_dsa;type:numeric(12,2);not null;default:0"`
	SupervisorPostingDta          float64 `json:"supervisor_posting_dta" gorm:"column:supervisor_posting_dta;type:numeric(12,2);not null;default:0"`
	SupervisorPostingLocalRunning float64 `json:"supervisor_posting_local_running" gorm:"column:supervisor_posting_local_running;type:numeric(12,2);not null;default:0"`
	SupervisorPostingTetfund      float64 `json:"supervisor_posting_tetfund" gorm:"column:supervisor_posting_tetfund;type:numeric(12,2);not null;default:0"`
	SupervisorPostingOther        float64 `json:"supervisor_posting_other" gorm:"column:supervisor_posting_other;type:numeric(12,2);not null;default:0"`
	SupervisorPostingPerVisitTotal float64 `json:"supervisor_posting_per_visit_total" gorm:"column:supervisor_posting_per_visit_total;type:numeric(12,2);not null;default:0"`

	SupervisorPostingDistanceCategory string  `json:"supervisor_posting_distance_category" gorm:"column:supervisor_posting_distance_category;type:varchar(10);not null;default:'INSIDE'"`
	SupervisorPostingRationale        *string `json:"supervisor_posting_rationale,omitempty" gorm:"column:supervisor_posting_rationale;type:text"`

	SupervisorPostingStatus    string     `json:"supervisor_posting_status" gorm:"column:supervisor_posting_status;type:varchar(12);not null;default:'active'"`
	SupervisorPostingCreatedBy *uuid.UUID `json:"supervisor_posting_created_by,omitempty" gorm:"column:supervisor_posting_created_by;type:uuid"`

	SupervisorPostingCreatedAt time.Time `json:"supervisor_posting_created_at" gorm:"column:supervisor_posting_created_at;type:timestamptz;not null;default:now()"`
	SupervisorPostingUpdatedAt time.Time `json:"supervisor_posting_updated_at" gorm:"column:supervisor_posting_updated_at;type:timestamptz;not null;default:now()"`
}

func (SupervisorPostingModel) TableName() string { return "supervisor_postings" }

/* =========================
   Hooks: refresh updated_at
   ========================= */

func (m *SupervisorPostingModel) BeforeCreate(tx *gorm.DB) error {
	m.SupervisorPostingUpdatedAt = time.Now().UTC()
	return nil
}
func (m *SupervisorPostingModel) BeforeUpdate(tx *gorm.DB) error {
	m.SupervisorPostingUpdatedAt = time.Now().UTC()
	return nil
}

/* =========================
   Scopes
   ========================= */

func ScopeActive(db *gorm.DB) *gorm.DB {
	return db.Where("supervisor_posting_status = ?", PostingStatusActive)
}

func ScopePrimary(db *gorm.DB) *gorm.DB {
	return db.Where("supervisor_posting_is_primary = TRUE")
}

func ScopeBySession(sessionID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("supervisor_posting_session_id = ?", sessionID)
	}
}

func ScopeBySlot(schoolID uuid.UUID, groupNumber, visitNumber int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"supervisor_posting_school_id = ? AND supervisor_posting_group_number = ? AND supervisor_posting_visit_number = ?",
			schoolID, groupNumber, visitNumber,
		)
	}
}

func ScopeBySupervisor(supervisorID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("supervisor_posting_supervisor_id = ?", supervisorID)
	}
}
