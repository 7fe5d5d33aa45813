// file: internals/features/teaching/schools/model/merged_school_cluster_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* =========================
   Model: merged_school_clusters
   ========================= */

// MergedSchoolClusterModel is one membership row: school X belongs to cluster K
// for group number N. The posting engine treats this strictly as an injected
// lookup — it never walks cluster relationships recursively.
type MergedSchoolClusterModel struct {
	MergedSchoolClusterID          uuid.UUID `json:"merged_school_cluster_id" gorm:"column:merged_school_cluster_id;type:uuid;primaryKey;default:gen_random_uuid()"`
	MergedSchoolClusterKey         uuid.UUID `json:"merged_school_cluster_key" gorm:"column:merged_school_cluster_key;type:uuid;not null"`
	MergedSchoolClusterSchoolID    uuid.UUID `json:"merged_school_cluster_school_id" gorm:"column:merged_school_cluster_school_id;type:uuid;not null"`
	MergedSchoolClusterGroupNumber int       `json:"merged_school_cluster_group_number" gorm:"column:merged_school_cluster_group_number;not null"`

	MergedSchoolClusterCreatedAt time.Time `json:"merged_school_cluster_created_at" gorm:"column:merged_school_cluster_created_at;type:timestamptz;not null;default:now()"`
}

func (MergedSchoolClusterModel) TableName() string { return "merged_school_clusters" }
