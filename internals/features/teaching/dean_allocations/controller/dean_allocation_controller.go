// file: internals/features/teaching/dean_allocations/controller/dean_allocation_controller.go
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

	d "tpms_backend/internals/features/teaching/dean_allocations/dto"
	svc "tpms_backend/internals/features/teaching/dean_allocations/service"
)

/* =========================
   Controller & Constructor
   ========================= */

type DeanAllocationController struct {
	DB       *gorm.DB
	Validate *validator.Validate
	Service  *svc.QuotaService
}

func New(db *gorm.DB, v *validator.Validate) *DeanAllocationController {
	return &DeanAllocationController{
		DB:       db,
		Validate: v,
		Service:  svc.NewQuotaService(svc.NewGormStore(db)),
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	idStr := strings.TrimSpace(c.Params(name))
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	return uuid.Parse(idStr)
}

// only admins manage allocations; deans may read their own remaining quota
func requireAdmin(c *fiber.Ctx) error {
	ac, err := helperAuth.GetAuthorContext(c)
	if err != nil {
		return err
	}
	if ac.Role != helperAuth.RoleAdmin {
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	}
	return nil
}

/* ========================= Create ========================= */

func (ctl *DeanAllocationController) Create(c *fiber.Ctx) error {
	if err := requireAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}

	var req d.CreateDeanAllocationRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("[DeanAllocation.Create] BodyParser error: %v", err)
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	alloc, err := ctl.Service.Allocate(c.UserContext(), req.ToModel())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Allocation created", d.FromModel(alloc))
}

/* ========================= List / Get ========================= */

func (ctl *DeanAllocationController) List(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(strings.TrimSpace(c.Query("session_id")))
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "session_id query param is required")
	}

	paging := helper.ResolvePaging(c, 50, 500)
	rows, total, err := ctl.Service.List(c.UserContext(), sessionID, paging.Offset, paging.Limit)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "Allocations fetched",
		d.FromModels(rows),
		helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage, len(rows)),
	)
}

func (ctl *DeanAllocationController) GetByID(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}
	alloc, err := ctl.Service.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Allocation fetched", d.FromModel(alloc))
}

/* ========================= Update ========================= */

func (ctl *DeanAllocationController) Update(c *fiber.Ctx) error {
	if err := requireAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}

	var req d.UpdateDeanAllocationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}
	if err := ctl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	alloc, err := ctl.Service.UpdateAllocation(c.UserContext(), id, req.AllocatedPostings, req.Notes)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Allocation updated", d.FromModel(alloc))
}

/* ========================= Delete ========================= */

func (ctl *DeanAllocationController) Delete(c *fiber.Ctx) error {
	if err := requireAdmin(c); err != nil {
		return helper.FromFiberError(c, err)
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}
	if err := ctl.Service.Delete(c.UserContext(), id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c, "Allocation deleted", fiber.Map{"id": id})
}

/* ========================= Remaining ========================= */

// MyRemaining lets a dean check their own quota headroom for a session.
func (ctl *DeanAllocationController) MyRemaining(c *fiber.Ctx) error {
	ac, err := helperAuth.GetAuthorContext(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	sessionID, err := uuid.Parse(strings.TrimSpace(c.Query("session_id")))
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, "session_id query param is required")
	}

	remaining, err := ctl.Service.RemainingFor(c.UserContext(), ac.UserID, sessionID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Remaining quota", fiber.Map{
		"dean_user_id": ac.UserID,
		"session_id":   sessionID,
		"remaining":    remaining,
	})
}

func (ctl *DeanAllocationController) Remaining(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonError(c, http.StatusBadRequest, err.Error())
	}

	alloc, err := ctl.Service.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Remaining quota", fiber.Map{
		"id":        alloc.DeanAllocationID,
		"remaining": alloc.Remaining(),
	})
}
