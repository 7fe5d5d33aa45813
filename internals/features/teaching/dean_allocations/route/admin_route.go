// file: internals/features/teaching/dean_allocations/route/admin_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	daController "tpms_backend/internals/features/teaching/dean_allocations/controller"
)

func DeanAllocationAdminRoutes(r fiber.Router, db *gorm.DB, v *validator.Validate) {
	ctl := daController.New(db, v)
	da := r.Group("/dean-allocations")
	{
		da.Post("/", ctl.Create)
		da.Get("/", ctl.List)
		da.Get("/mine/remaining", ctl.MyRemaining)
		da.Get("/:id", ctl.GetByID)
		da.Patch("/:id", ctl.Update)
		da.Delete("/:id", ctl.Delete)
		da.Get("/:id/remaining", ctl.Remaining)
	}
}
