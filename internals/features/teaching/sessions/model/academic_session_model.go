// file: internals/features/teaching/sessions/model/academic_session_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Model: academic_sessions
   ========================= */

// AcademicSessionModel carries the per-session posting policy. The engine only
// ever reads it; session CRUD belongs to the excluded admin surface.
type AcademicSessionModel struct {
	AcademicSessionID   uuid.UUID `json:"academic_session_id" gorm:"column:academic_session_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	AcademicSessionName string    `json:"academic_session_name" gorm:"column:academic_session_name;type:text;not null"`

	// allowance policy
	AcademicSessionInsideDistanceThresholdKm float64 `json:"academic_session_inside_distance_threshold_km" gorm:"column:academic_session_inside_distance_threshold_km;type:numeric(8,2);not null;default:10"`
	AcademicSessionDsaEnabled                bool    `json:"academic_session_dsa_enabled" gorm:"column:academic_session_dsa_enabled;not null;default:false"`
	AcademicSessionDsaMinDistanceKm          float64 `json:"academic_session_dsa_min_distance_km" gorm:"column:academic_session_dsa_min_distance_km;type:numeric(8,2);not null;default:0"`
	AcademicSessionDsaMaxDistanceKm          float64 `json:"academic_session_dsa_max_distance_km" gorm:"column:academic_session_dsa_max_distance_km;type:numeric(8,2);not null;default:0"`
	AcademicSessionDsaPercentage             float64 `json:"academic_session_dsa_percentage" gorm:"column:academic_session_dsa_percentage;type:numeric(5,2);not null;default:0"`

	// supervision policy
	AcademicSessionMaxSupervisionVisits int  `json:"academic_session_max_supervision_visits" gorm:"column:academic_session_max_supervision_visits;not null;default:3"`
	AcademicSessionEnforceVisitCap      bool `json:"academic_session_enforce_visit_cap" gorm:"column:academic_session_enforce_visit_cap;not null;default:false"`

	AcademicSessionIsActive  bool      `json:"academic_session_is_active" gorm:"column:academic_session_is_active;not null;default:true"`
	AcademicSessionCreatedAt time.Time `json:"academic_session_created_at" gorm:"column:academic_session_created_at;type:timestamptz;not null;default:now()"`
	AcademicSessionUpdatedAt time.Time `json:"academic_session_updated_at" gorm:"column:academic_session_updated_at;type:timestamptz;not null;default:now()"`
}

func (AcademicSessionModel) TableName() string { return "academic_sessions" }

func (m *AcademicSessionModel) BeforeUpdate(tx *gorm.DB) error {
	m.AcademicSessionUpdatedAt = time.Now().UTC()
	return nil
}
