// file: internals/features/teaching/postings/dto/posting_dto.go
package dto

import (
	"github.com/google/uuid"

	pmodel "tpms_backend/internals/features/teaching/postings/model"
	service "tpms_backend/internals/features/teaching/postings/service"
)

/* =========================================================
   REQUEST: candidates
   ========================================================= */

type CandidateRequest struct {
	SupervisorID uuid.UUID `json:"supervisor_id" validate:"required"`
	SchoolID     uuid.UUID `json:"school_id"     validate:"required"`
	GroupNumber  int       `json:"group_number"  validate:"required,min=1"`
	VisitNumber  int       `json:"visit_number"  validate:"required,min=1"`
	DistanceKm   float64   `json:"distance_km"   validate:"min=0"`
}

func (r CandidateRequest) ToCandidate(sessionID uuid.UUID) service.Candidate {
	return service.Candidate{
		SessionID:    sessionID,
		SupervisorID: r.SupervisorID,
		SchoolID:     r.SchoolID,
		GroupNumber:  r.GroupNumber,
		VisitNumber:  r.VisitNumber,
		DistanceKm:   r.DistanceKm,
	}
}

type ValidateCandidateRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
	CandidateRequest
}

type SubmitBatchRequest struct {
	SessionID  uuid.UUID          `json:"session_id" validate:"required"`
	Candidates []CandidateRequest `json:"candidates" validate:"required,min=1,dive"`
}

func (r SubmitBatchRequest) ToCandidates() []service.Candidate {
	out := make([]service.Candidate, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		out = append(out, c.ToCandidate(r.SessionID))
	}
	return out
}

type AutoPostRequest struct {
	SessionID      uuid.UUID  `json:"session_id" validate:"required"`
	FacultyID      *uuid.UUID `json:"faculty_id"`
	MaxAssignments int        `json:"max_assignments" validate:"min=0"`
}

type AllowancePreviewRequest struct {
	SessionID  uuid.UUID `json:"session_id"  validate:"required"`
	RankID     uuid.UUID `json:"rank_id"     validate:"required"`
	DistanceKm float64   `json:"distance_km" validate:"min=0"`
	VisitCount int       `json:"visit_count" validate:"required,min=1"`
}

/* =========================================================
   RESPONSE: posting
   ========================================================= */

type PostingResponse struct {
	PostingID           uuid.UUID  `json:"posting_id"`
	SessionID           uuid.UUID  `json:"session_id"`
	SchoolID            uuid.UUID  `json:"school_id"`
	GroupNumber         int        `json:"group_number"`
	VisitNumber         int        `json:"visit_number"`
	SupervisorID        uuid.UUID  `json:"supervisor_id"`
	DistanceKm          float64    `json:"distance_km"`
	IsPrimary           bool       `json:"is_primary"`
	MergedWithPostingID *uuid.UUID `json:"merged_with_posting_id,omitempty"`
	LocalRunning        float64    `json:"local_running"`
	Transport           float64    `json:"transport"`
	Dsa                 float64    `json:"dsa"`
	Dta                 float64    `json:"dta"`
	Tetfund             float64    `json:"tetfund"`
	Other               float64    `json:"other"`
	PerVisitTotal       float64    `json:"per_visit_total"`
	DistanceCategory    string     `json:"distance_category"`
	Rationale           *string    `json:"rationale,omitempty"`
	Status              string     `json:"status"`
}

func FromPostingModel(m *pmodel.SupervisorPostingModel) PostingResponse {
	return PostingResponse{
		PostingID:           m.SupervisorPostingID,
		SessionID:           m.SupervisorPostingSessionID,
		SchoolID:            m.SupervisorPostingSchoolID,
		GroupNumber:         m.SupervisorPostingGroupNumber,
		VisitNumber:         m.SupervisorPostingVisitNumber,
		SupervisorID:        m.SupervisorPostingSupervisorID,
		DistanceKm:          m.SupervisorPostingDistanceKm,
		IsPrimary:           m.SupervisorPostingIsPrimary,
		MergedWithPostingID: m.SupervisorPostingMergedWithID,
		LocalRunning:        m.SupervisorPostingLocalRunning,
		Transport:           m.SupervisorPostingTransport,
		Dsa:                 m.SupervisorPostingDsa,
		Dta:                 m.SupervisorPostingDta,
		Tetfund:             m.SupervisorPostingTetfund,
		Other:               m.SupervisorPostingOther,
		PerVisitTotal:       m.SupervisorPostingPerVisitTotal,
		DistanceCategory:    m.SupervisorPostingDistanceCategory,
		Rationale:           m.SupervisorPostingRationale,
		Status:              m.SupervisorPostingStatus,
	}
}

func FromPostingModels(ms []pmodel.SupervisorPostingModel) []PostingResponse {
	out := make([]PostingResponse, 0, len(ms))
	for i := range ms {
		out = append(out, FromPostingModel(&ms[i]))
	}
	return out
}
