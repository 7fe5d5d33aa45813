// file: internals/features/teaching/postings/service/domain.go
package service

import (
	"github.com/google/uuid"
)

/* =========================
   Collaborator value types
   ========================= */

// SessionPolicy is the read-only posting policy for one academic session.
type SessionPolicy struct {
	SessionID                 uuid.UUID
	InsideDistanceThresholdKm float64
	DsaEnabled                bool
	DsaMinDistanceKm          float64
	DsaMaxDistanceKm          float64
	DsaPercentage             float64 // 0..100
	MaxSupervisionVisits      int
	EnforceVisitCap           bool
}

// RankRates is the allowance rate card of one academic rank.
type RankRates struct {
	RankID                uuid.UUID
	Name                  string
	LocalRunningAllowance float64
	TransportPerKm        float64
	Dsa                   float64
	Dta                   float64
	Tetfund               float64
	OtherAllowances       map[string]float64
}

type SupervisorInfo struct {
	SupervisorID uuid.UUID
	RankID       uuid.UUID
	FacultyID    *uuid.UUID
}

// GroupInfo is the slot state of one practice group: which visit numbers are
// not yet covered by an active primary posting.
type GroupInfo struct {
	SchoolID        uuid.UUID
	GroupNumber     int
	StudentCount    int
	AvailableVisits []int
}

// OpenSlot is one unassigned (school, group, visit) triple.
type OpenSlot struct {
	SchoolID    uuid.UUID `json:"school_id"`
	SchoolName  string    `json:"school_name"`
	GroupNumber int       `json:"group_number"`
	VisitNumber int       `json:"visit_number"`
	DistanceKm  float64   `json:"distance_km"`
}

// SupervisorLoad pairs a supervisor with their current active visit count.
type SupervisorLoad struct {
	SupervisorID  uuid.UUID
	FullName      string
	RankID        uuid.UUID
	FacultyID     *uuid.UUID
	CurrentVisits int
}

/* =========================
   Engine input types
   ========================= */

// Candidate is one proposed primary posting.
type Candidate struct {
	SessionID    uuid.UUID `json:"session_id"`
	SupervisorID uuid.UUID `json:"supervisor_id"`
	SchoolID     uuid.UUID `json:"school_id"`
	GroupNumber  int       `json:"group_number"`
	VisitNumber  int       `json:"visit_number"`
	DistanceKm   float64   `json:"distance_km"`
}

// SlotKey is the duplication identity of a candidate within one session.
type SlotKey struct {
	SchoolID    uuid.UUID
	GroupNumber int
	VisitNumber int
}

func (c Candidate) SlotKey() SlotKey {
	return SlotKey{SchoolID: c.SchoolID, GroupNumber: c.GroupNumber, VisitNumber: c.VisitNumber}
}

// Author identifies who is submitting; quota-bound authors (deans) consume a
// DeanAllocation per successful primary posting.
type Author struct {
	UserID     uuid.UUID
	QuotaBound bool
}
