package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	RoleAdmin = "admin"
	RoleDean  = "dean"
)

// AuthorContext identifies who is creating postings in this request.
// Deans are quota-bound: their primary postings consume a DeanAllocation.
type AuthorContext struct {
	UserID    uuid.UUID
	Role      string
	FacultyID *uuid.UUID
}

func (a AuthorContext) IsQuotaBound() bool { return a.Role == RoleDean }

// GetAuthorContext reads the locals stored by the auth middleware.
func GetAuthorContext(c *fiber.Ctx) (AuthorContext, error) {
	raw, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || userID == uuid.Nil {
		return AuthorContext{}, fiber.NewError(fiber.StatusUnauthorized, "missing user identity in token")
	}

	role, _ := c.Locals("role").(string)
	if role == "" {
		return AuthorContext{}, fiber.NewError(fiber.StatusUnauthorized, "missing role in token")
	}

	out := AuthorContext{UserID: userID, Role: role}
	if fidStr, ok := c.Locals("faculty_id").(string); ok && fidStr != "" {
		if fid, err := uuid.Parse(fidStr); err == nil {
			out.FacultyID = &fid
		}
	}
	return out, nil
}

// RequirePostingAuthor guards the engine endpoints: only admins and deans may
// create or cancel postings.
func RequirePostingAuthor(c *fiber.Ctx) (AuthorContext, error) {
	author, err := GetAuthorContext(c)
	if err != nil {
		return AuthorContext{}, err
	}
	if author.Role != RoleAdmin && author.Role != RoleDean {
		return AuthorContext{}, fiber.NewError(fiber.StatusForbidden, "access denied")
	}
	return author, nil
}
