package handler

import (
	"strconv"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	"github.com/gin-gonic/gin"
)

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewValidationError(name, raw, "expected a positive integer", errs.ErrInvalidID)
	}
	return id, nil
}

// bindJSON decodes the request body, reporting malformed bodies as validation errors
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errs.NewValidationError("body", "", err.Error(), nil)
	}
	return nil
}

// fail hands err to the error middleware
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}
