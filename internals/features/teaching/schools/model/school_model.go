// file: internals/features/teaching/schools/model/school_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Model: schools
   ========================= */

// SchoolModel — distance is supplied by institution data entry, never derived
// from coordinates here.
type SchoolModel struct {
	SchoolID        uuid.UUID  `json:"school_id" gorm:"column:school_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SchoolName      string     `json:"school_name" gorm:"column:school_name;type:text;not null"`
	SchoolFacultyID *uuid.UUID `json:"school_faculty_id,omitempty" gorm:"column:school_faculty_id;type:uuid"`
	SchoolDistanceKm float64   `json:"school_distance_km" gorm:"column:school_distance_km;type:numeric(8,2);not null;default:0"`

	SchoolCreatedAt time.Time `json:"school_created_at" gorm:"column:school_created_at;type:timestamptz;not null;default:now()"`
	SchoolUpdatedAt time.Time `json:"school_updated_at" gorm:"column:school_updated_at;type:timestamptz;not null;default:now()"`
}

func (SchoolModel) TableName() string { return "schools" }

func (m *SchoolModel) BeforeUpdate(tx *gorm.DB) error {
	m.SchoolUpdatedAt = time.Now().UTC()
	return nil
}
