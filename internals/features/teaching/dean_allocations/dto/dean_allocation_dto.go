// file: internals/features/teaching/dean_allocations/dto/dean_allocation_dto.go
package dto

import (
	"github.com/google/uuid"

	model "tpms_backend/internals/features/teaching/dean_allocations/model"
)

/* =========================================================
   REQUEST: Create
   ========================================================= */

type CreateDeanAllocationRequest struct {
	DeanUserID        uuid.UUID  `json:"dean_user_id" validate:"required"`
	SessionID         uuid.UUID  `json:"session_id"   validate:"required"`
	FacultyID         *uuid.UUID `json:"faculty_id"`
	AllocatedPostings int        `json:"allocated_postings" validate:"required,min=1"`
	Notes             *string    `json:"notes"`
}

func (r *CreateDeanAllocationRequest) ToModel() *model.DeanAllocationModel {
	return &model.DeanAllocationModel{
		DeanAllocationDeanUserID:        r.DeanUserID,
		DeanAllocationSessionID:         r.SessionID,
		DeanAllocationFacultyID:         r.FacultyID,
		DeanAllocationAllocatedPostings: r.AllocatedPostings,
		DeanAllocationNotes:             r.Notes,
	}
}

/* =========================================================
   REQUEST: Update
   ========================================================= */

type UpdateDeanAllocationRequest struct {
	AllocatedPostings int     `json:"allocated_postings" validate:"required,min=1"`
	Notes             *string `json:"notes"`
}

/* =========================================================
   RESPONSE
   ========================================================= */

type DeanAllocationResponse struct {
	ID                uuid.UUID  `json:"id"`
	DeanUserID        uuid.UUID  `json:"dean_user_id"`
	SessionID         uuid.UUID  `json:"session_id"`
	FacultyID         *uuid.UUID `json:"faculty_id,omitempty"`
	AllocatedPostings int        `json:"allocated_postings"`
	UsedPostings      int        `json:"used_postings"`
	Remaining         int        `json:"remaining"`
	Notes             *string    `json:"notes,omitempty"`
}

func FromModel(m *model.DeanAllocationModel) DeanAllocationResponse {
	return DeanAllocationResponse{
		ID:                m.DeanAllocationID,
		DeanUserID:        m.DeanAllocationDeanUserID,
		SessionID:         m.DeanAllocationSessionID,
		FacultyID:         m.DeanAllocationFacultyID,
		AllocatedPostings: m.DeanAllocationAllocatedPostings,
		UsedPostings:      m.DeanAllocationUsedPostings,
		Remaining:         m.Remaining(),
		Notes:             m.DeanAllocationNotes,
	}
}

func FromModels(ms []model.DeanAllocationModel) []DeanAllocationResponse {
	out := make([]DeanAllocationResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromModel(&ms[i]))
	}
	return out
}
