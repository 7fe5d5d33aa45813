// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authMiddleware "tpms_backend/internals/middlewares/auth"

	daRoute "tpms_backend/internals/features/teaching/dean_allocations/route"
	pRoute "tpms_backend/internals/features/teaching/postings/route"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	v := validator.New()

	// ===================== ADMIN / DEAN =====================
	// Everything under /api/a requires a valid JWT; role checks happen
	// per-handler so deans and admins can share the group.
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a", authMiddleware.AuthMiddleware())

	log.Println("[INFO] Setting up PostingAdminRoutes...")
	pRoute.PostingAdminRoutes(admin, db, v)

	log.Println("[INFO] Setting up DeanAllocationAdminRoutes...")
	daRoute.DeanAllocationAdminRoutes(admin, db, v)

	log.Printf("[INFO] Routes ready in %s", time.Since(startTime))
}
