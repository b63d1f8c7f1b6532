package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"invoicehub/internal/common"
	"invoicehub/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator adapts validator v10 to echo. Field names in errors use
// the json tag of the offending field.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i any) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return common.Validation("invalid request: %v", err)
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fieldMessage(fe)
	}
	first := verrs[0]
	return &common.AppError{
		Kind:    common.KindValidation,
		Message: fieldMessage(first),
		Details: details,
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "url":
		return fe.Field() + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// bindAndValidate decodes the request into dst and runs the validator.
func bindAndValidate(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return common.Validation("Invalid request format")
	}
	return c.Validate(dst)
}

// NewHTTPErrorHandler renders every error as the standard envelope. In
// production, internal error messages are replaced by a generic one.
func NewHTTPErrorHandler(production bool) echo.HTTPErrorHandler {
	log := logger.WithComponent("http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status  int
			message string
			details map[string]string
		)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			message = http.StatusText(status)
			if m, ok := he.Message.(string); ok {
				message = m
			}
		} else {
			appErr := common.AsAppError(err)
			status = appErr.StatusCode()
			message = appErr.Message
			details = appErr.Details
		}

		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", status).
				Msg("request failed")
			if production && status == http.StatusInternalServerError {
				message = "Internal server error"
				details = nil
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = common.SendError(c, status, message, details)
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to write error response")
		}
	}
}
