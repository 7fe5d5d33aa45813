// file: internals/features/teaching/sessions/model/supervisor_rank_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* =========================
   Model: supervisor_ranks
   ========================= */

// SupervisorRankModel is the allowance rate card per academic rank.
// Immutable from the engine's point of view.
type SupervisorRankModel struct {
	SupervisorRankID   uuid.UUID `json:"supervisor_rank_id" gorm:"column:supervisor_rank_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	SupervisorRankName string    `json:"supervisor_rank_name" gorm:"column:supervisor_rank_name;type:text;not null"`

	SupervisorRankLocalRunningAllowance float64 `json:"supervisor_rank_local_running_allowance" gorm:"column:supervisor_rank_local_running_allowance;type:numeric(12,2);not null;default:0"`
	SupervisorRankTransportPerKm        float64 `json:"supervisor_rank_transport_per_km" gorm:"column:supervisor_rank_transport_per_km;type:numeric(12,2);not null;default:0"`
	SupervisorRankDsa                   float64 `json:"supervisor_rank_dsa" gorm:"column:supervisor_rank_dsa;type:numeric(12,2);not null;default:0"`
	SupervisorRankDta                   float64 `json:"supervisor_rank_dta" gorm:"column:supervisor_rank_dta;type:numeric(12,2);not null;default:0"`
	SupervisorRankTetfund               float64 `json:"supervisor_rank_tetfund" gorm:"column:supervisor_rank_tetfund;type:numeric(12,2);not null;default:0"`

	// name → amount, e.g. {"hazard": 1500}
	SupervisorRankOtherAllowances datatypes.JSONMap `json:"supervisor_rank_other_allowances,omitempty" gorm:"column:supervisor_rank_other_allowances;type:jsonb"`

	SupervisorRankCreatedAt time.Time `json:"supervisor_rank_created_at" gorm:"column:supervisor_rank_created_at;type:timestamptz;not null;default:now()"`
	SupervisorRankUpdatedAt time.Time `json:"supervisor_rank_updated_at" gorm:"column:supervisor_rank_updated_at;type:timestamptz;not null;default:now()"`
}

func (SupervisorRankModel) TableName() string { return "supervisor_ranks" }

func (m *SupervisorRankModel) BeforeUpdate(tx *gorm.DB) error {
	m.SupervisorRankUpdatedAt = time.Now().UTC()
	return nil
}

// OtherAllowanceAmounts flattens the JSONB map to name → float64, dropping
// non-numeric values.
func (m *SupervisorRankModel) OtherAllowanceAmounts() map[string]float64 {
	if len(m.SupervisorRankOtherAllowances) == 0 {
		return nil
	}
	out := make(map[string]float64, len(m.SupervisorRankOtherAllowances))
	for name, raw := range m.SupervisorRankOtherAllowances {
		switch v := raw.(type) {
		case float64:
			out[name] = v
		case int:
			out[name] = float64(v)
		}
	}
	return out
}
