// file: internals/features/teaching/postings/controller/posting_controller.go
package controller

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	helper "tpms_backend/internals/helpers"
	helperAuth "tpms_backend/internals/helpers/auth"

	d "tpms_backend/internals/features/teaching/postings/dto"
	m "tpms_backend/internals/features/teaching/postings/model"
	svc "tpms_backend/internals/features/teaching/postings/service"
)

/* =========================
   Controller & Constructor
   ========================= */

type PostingController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Engine   *svc.Engine
}

func New(db *gorm.DB, v *validator.Validate) *PostingController {
	return &PostingController{
		DB:       db,
		Validate: v,
		Engine:   svc.NewEngine(svc.NewGormStores(db)),
	}
}

/* =========================
   Helpers
   ========================= */

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	idStr := strings.TrimSpace(c.Params(name))
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	return uuid.Parse(idStr)
}

func (ctl *PostingController) author(c *fiber.Ctx) (svc.Author, error) {
	ac, err := helperAuth.RequirePostingAuthor(c)
	if err != nil {
		return svc.Author{}, err
	}
	return svc.Author{UserID: ac.UserID, QuotaBound: ac.IsQuotaBound()}, nil
}

/* ========================= Validate ========================= */

func (ctl *PostingController) ValidateCandidate(c *fiber.Ctx) error {
	if _, err := ctl.author(c); err != nil {
		return helper.FromFiberError(c, err)
	}

	var req d.ValidateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[Posting.Validate] BodyParser error: %v", err)
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	result, err := ctl.Engine.Validate(c.UserContext(), req.ToCandidate(req.SessionID))
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Candidate checked", result)
}

/* ========================= Submit batch ========================= */

func (ctl *PostingController) SubmitBatch(c *fiber.Ctx) error {
	author, err := ctl.author(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req d.SubmitBatchRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[Posting.SubmitBatch] BodyParser error: %v", err)
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	result, err := ctl.Engine.SubmitBatch(c.UserContext(), req.SessionID, req.ToCandidates(), author)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Batch processed", result)
}

/* ========================= Auto-post ========================= */

func (ctl *PostingController) AutoPost(c *fiber.Ctx) error {
	author, err := ctl.author(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req d.AutoPostRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[Posting.AutoPost] BodyParser error: %v", err)
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	// dean-scoped runs stay inside the dean's own faculty
	if author.QuotaBound {
		if ac, err := helperAuth.GetAuthorContext(c); err == nil && ac.FacultyID != nil {
			req.FacultyID = ac.FacultyID
		}
	}

	result, err := ctl.Engine.AutoPost(c.UserContext(), req.SessionID, svc.AutoPostOptions{
		FacultyID:      req.FacultyID,
		MaxAssignments: req.MaxAssignments,
	}, author)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Auto-posting run complete", result)
}

/* ========================= Allowance preview ========================= */

func (ctl *PostingController) AllowancePreview(c *fiber.Ctx) error {
	var req d.AllowancePreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	breakdown, err := ctl.Engine.PreviewAllowance(c.UserContext(), req.SessionID, req.RankID, req.DistanceKm, req.VisitCount)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Allowance computed", breakdown)
}

/* ========================= List ========================= */

func (ctl *PostingController) List(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(strings.TrimSpace(c.Query("session_id")))
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "session_id query param is required")
	}

	paging := helper.ResolvePaging(c, 50, 500)

	q := ctl.DB.WithContext(c.UserContext()).
		Model(&m.SupervisorPostingModel{}).
		Scopes(m.ScopeBySession(sessionID))
	if c.Query("status", m.PostingStatusActive) == m.PostingStatusActive {
		q = q.Scopes(m.ScopeActive)
	}
	if supStr := strings.TrimSpace(c.Query("supervisor_id")); supStr != "" {
		supID, err := uuid.Parse(supStr)
		if err != nil {
			return helper.JsonError(c, http.StatusBadRequest, "invalid supervisor_id")
		}
		q = q.Scopes(m.ScopeBySupervisor(supID))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.WritePGError(c, err)
	}

	var rows []m.SupervisorPostingModel
	if err := q.
		Order("supervisor_posting_school_id, supervisor_posting_group_number, supervisor_posting_visit_number").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.WritePGError(c, err)
	}

	return helper.JsonList(c, "Postings fetched",
		d.FromPostingModels(rows),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage, len(rows)),
	)
}

/* ========================= Cancel ========================= */

func (ctl *PostingController) Cancel(c *fiber.Ctx) error {
	if _, err := ctl.author(c); err != nil {
		return helper.FromFiberError(c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}

	result, err := ctl.Engine.CancelPosting(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Posting cancelled", result)
}
