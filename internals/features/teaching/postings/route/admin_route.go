// file: internals/features/teaching/postings/route/admin_route.go
package route

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	pController "tpms_backend/internals/features/teaching/postings/controller"
	"tpms_backend/internals/middlewares"
)

// PostingAdminRoutes mounts the posting engine endpoints. Batch and auto-post
// get the tighter limiter: both fan out into many writes.
func PostingAdminRoutes(r fiber.Router, db *gorm.DB, v *validator.Validate) {
	ctl := pController.New(db, v)
	p := r.Group("/postings")
	{
		p.Get("/", ctl.List)
		p.Post("/validate", ctl.ValidateCandidate)
		p.Post("/allowance-preview", ctl.AllowancePreview)
		p.Post("/batch", middlewares.BatchRateLimiter(), ctl.SubmitBatch)
		p.Post("/auto", middlewares.BatchRateLimiter(), ctl.AutoPost)
		p.Delete("/:id", ctl.Cancel)
	}
}
