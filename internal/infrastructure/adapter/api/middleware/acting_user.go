package middleware

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	"github.com/gin-gonic/gin"
)

// ActingUserHeader carries the id of the user issuing the command
const ActingUserHeader = "X-User-ID"

const actorKey = "actorID"

// ErrMissingActor is returned when a command arrives without an acting user
var ErrMissingActor = fmt.Errorf("%w: %s header is required", errs.ErrForbidden, ActingUserHeader)

// ActingUser reads the acting user from the request header and stores it on the context
func ActingUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(ActingUserHeader))
		if raw == "" {
			_ = c.Error(ErrMissingActor)
			c.Abort()
			return
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			_ = c.Error(errs.NewValidationError(ActingUserHeader, raw, "expected a positive integer", errs.ErrInvalidID))
			c.Abort()
			return
		}

		c.Set(actorKey, id)
		c.Next()
	}
}

// ActorID returns the acting user stored by ActingUser, or 0
func ActorID(c *gin.Context) uint64 {
	return c.GetUint64(actorKey)
}
