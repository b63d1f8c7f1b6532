package common

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserKey      contextKey = "user"
	RequestIDKey contextKey = "request_id"
)

// Actor is the authenticated caller recorded on invoices as created_by.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// APIResponse is the envelope for every JSON response.
type APIResponse struct {
	StatusCode int               `json:"statusCode"`
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       any               `json:"data,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
	Timestamp  string            `json:"timestamp"`
}

func newResponse(status int, data any, message string) APIResponse {
	return APIResponse{
		StatusCode: status,
		Success:    status < 400,
		Message:    message,
		Data:       data,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// SendSuccess writes a 200 envelope.
func SendSuccess(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, newResponse(http.StatusOK, data, message))
}

// SendCreated writes a 201 envelope.
func SendCreated(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, newResponse(http.StatusCreated, data, message))
}

// SendAccepted writes a 202 envelope.
func SendAccepted(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusAccepted, newResponse(http.StatusAccepted, data, message))
}

// SendError writes an error envelope. Details are optional.
func SendError(c echo.Context, status int, message string, details map[string]string) error {
	resp := newResponse(status, nil, message)
	resp.Details = details
	return c.JSON(status, resp)
}

// ValidateUUID parses a path or body identifier.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, ValidationField(fieldName, fmt.Sprintf("%s is required", fieldName))
	}
	if len(idStr) != 36 {
		return uuid.Nil, ValidationField(fieldName, fmt.Sprintf("%s must be a valid UUID", fieldName))
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, ValidationField(fieldName, fmt.Sprintf("%s must be a valid UUID", fieldName))
	}
	return id, nil
}

// ValidatePaginationParams normalizes 1-based page and limit values.
func ValidatePaginationParams(page, limit, defaultLimit, maxLimit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// ValidateSortOrder returns ASC or DESC, defaulting to DESC.
func ValidateSortOrder(sortOrder string) string {
	if strings.EqualFold(strings.TrimSpace(sortOrder), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns field when it is whitelisted, otherwise fallback.
func ValidateSortField(field string, allowed map[string]bool, fallback string) string {
	if allowed[field] {
		return field
	}
	return fallback
}

// EscapeLike escapes LIKE wildcards so user input matches literally.
func EscapeLike(query string) string {
	query = strings.TrimSpace(query)
	if len(query) > 100 {
		query = query[:100]
	}
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(query)
}

// ValidateDateRange rejects inverted or unreasonably large ranges.
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return Validation("end date cannot be before start date")
	}
	if endDate.Sub(startDate) > time.Hour*24*365*10 {
		return Validation("date range cannot exceed 10 years")
	}
	return nil
}

// ParseDate accepts YYYY-MM-DD or RFC3339.
func ParseDate(value, fieldName string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, ValidationField(fieldName, fmt.Sprintf("%s must be in YYYY-MM-DD format", fieldName))
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for blank strings.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// WithActor stores the authenticated caller on ctx.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, UserKey, actor)
}

// ActorFromContext extracts the authenticated caller from ctx.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(UserKey).(Actor)
	return actor, ok
}
