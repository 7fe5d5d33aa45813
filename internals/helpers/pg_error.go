package helper

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// pgSQLErr matches pgconn.PgError without importing the driver directly.
type pgSQLErr interface {
	SQLState() string
	Error() string
}

// MapPGError translates SQLSTATE codes from commit-time failures into the
// caller-facing taxonomy. A 23505 here means a concurrent request won the slot
// between validation and commit — recoverable conflict, not a crash.
func MapPGError(err error) (int, string) {
	// 23505 = unique_violation
	// 23503 = foreign_key_violation
	// 23514 = check_violation
	var pgErr pgSQLErr
	if errors.As(err, &pgErr) {
		switch pgErr.SQLState() {
		case "23505":
			return http.StatusConflict, "slot already assigned (unique violation)"
		case "23503":
			return http.StatusBadRequest, "referenced record not found (FK violation)"
		case "23514":
			return http.StatusBadRequest, "constraint violated (check violation)"
		}
	}
	return http.StatusInternalServerError, err.Error()
}

func WritePGError(c *fiber.Ctx, err error) error {
	code, msg := MapPGError(err)
	return JsonError(c, code, msg)
}

// IsPGConflict reports whether err is a unique-constraint violation.
func IsPGConflict(err error) bool {
	var pgErr pgSQLErr
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
