package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/middleware"
)

func fail(c *gin.Context, err error) {
	middleware.Abort(c, err)
}

// bindJSON decodes the body into dst, recording a validation error on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make(map[string]any, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details[field] = fmt.Sprintf("%s is required", field)
			default:
				details[field] = fmt.Sprintf("%s is invalid", field)
			}
		}
		return apperr.Validation("Validation failed").WithDetails(details)
	}
	return apperr.Validation("Invalid request body").Wrap(err)
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// actor returns the authenticated actor. Routes using it sit behind Protect.
func actor(c *gin.Context) auth.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

// pageNumber parses a 1-based page query value. Anything invalid is page 1.
func pageNumber(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
