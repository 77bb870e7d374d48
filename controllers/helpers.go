package controllers

import (
	"strconv"

	"storefront-service/apperrors"

	"github.com/gin-gonic/gin"
)

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string, invalid *apperrors.Error) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.Invalid(invalid, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive integer query parameter.
func queryID(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.Invalid(apperrors.ErrBadRequest, name+" must be a positive integer"))
		return nil, false
	}
	return &id, true
}

func bindError(c *gin.Context, err error) {
	_ = c.Error(apperrors.Invalid(apperrors.ErrBadRequest, err.Error()))
}
