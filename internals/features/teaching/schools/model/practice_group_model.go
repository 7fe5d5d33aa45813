// file: internals/features/teaching/schools/model/practice_group_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Model: practice_groups
   ========================= */

// PracticeGroupModel — one student cohort at one school for one session.
type PracticeGroupModel struct {
	PracticeGroupID           uuid.UUID `json:"practice_group_id" gorm:"column:practice_group_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	PracticeGroupSchoolID     uuid.UUID `json:"practice_group_school_id" gorm:"column:practice_group_school_id;type:uuid;not null"`
	PracticeGroupSessionID    uuid.UUID `json:"practice_group_session_id" gorm:"column:practice_group_session_id;type:uuid;not null"`
	PracticeGroupNumber       int       `json:"practice_group_number" gorm:"column:practice_group_number;not null"`
	PracticeGroupStudentCount int       `json:"practice_group_student_count" gorm:"column:practice_group_student_count;not null;default:0"`

	PracticeGroupCreatedAt time.Time `json:"practice_group_created_at" gorm:"column:practice_group_created_at;type:timestamptz;not null;default:now()"`
	PracticeGroupUpdatedAt time.Time `json:"practice_group_updated_at" gorm:"column:practice_group_updated_at;type:timestamptz;not null;default:now()"`
}

func (PracticeGroupModel) TableName() string { return "practice_groups" }

func (m *PracticeGroupModel) BeforeUpdate(tx *gorm.DB) error {
	m.PracticeGroupUpdatedAt = time.Now().UTC()
	return nil
}

/* =========================
   Scopes
   ========================= */

func ScopeGroupBySession(sessionID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("practice_group_session_id = ?", sessionID)
	}
}
