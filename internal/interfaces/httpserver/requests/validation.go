package requests

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// NewValidator returns a struct validator with the library's custom tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("mediatype", func(fl validator.FieldLevel) bool {
		_, ok := media.ParseType(fl.Field().String())
		return ok
	})
	return v
}

// BindJSON decodes the body into req and validates it. Failures are VALIDATION errors.
func BindJSON(c *gin.Context, validate *validator.Validate, req any) error {
	ctx := c.Request.Context()
	if err := c.ShouldBindJSON(req); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid request body", err, "request-bind-json-001")
	}
	if err := validate.Struct(req); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, describe(err), err, "request-validate-001")
	}
	return nil
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "invalid request"
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "mediatype":
			parts = append(parts, fmt.Sprintf("%s must be one of book, movie, music, tv", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "min", "max", "gte", "lte":
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}
