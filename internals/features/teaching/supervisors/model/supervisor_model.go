// file: internals/features/teaching/supervisors/model/supervisor_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Model: supervisors
   ========================= */

type SupervisorModel struct {
	SupervisorID        uuid.UUID  `json:"supervisor_id" gorm:"column:supervisor_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SupervisorUserID    uuid.UUID  `json:"supervisor_user_id" gorm:"column:supervisor_user_id;type:uuid;not null"`
	SupervisorFullName  string     `json:"supervisor_full_name" gorm:"column:supervisor_full_name;type:text;not null"`
	SupervisorRankID    uuid.UUID  `json:"supervisor_rank_id" gorm:"column:supervisor_rank_id;type:uuid;not null"`
	SupervisorFacultyID *uuid.UUID `json:"supervisor_faculty_id,omitempty" gorm:"column:supervisor_faculty_id;type:uuid"`
	SupervisorIsActive  bool       `json:"supervisor_is_active" gorm:"column:supervisor_is_active;not null;default:true"`

	SupervisorCreatedAt time.Time `json:"supervisor_created_at" gorm:"column:supervisor_created_at;type:timestamptz;not null;default:now()"`
	SupervisorUpdatedAt time.Time `json:"supervisor_updated_at" gorm:"column:supervisor_updated_at;type:timestamptz;not null;default:now()"`
}

func (SupervisorModel) TableName() string { return "supervisors" }

func (m *SupervisorModel) BeforeUpdate(tx *gorm.DB) error {
	m.SupervisorUpdatedAt = time.Now().UTC()
	return nil
}

/* =========================
   Scopes
   ========================= */

func ScopeSupervisorActive(db *gorm.DB) *gorm.DB {
	return db.Where("supervisor_is_active = TRUE")
}

func ScopeSupervisorByFaculty(facultyID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("supervisor_faculty_id = ?", facultyID)
	}
}
