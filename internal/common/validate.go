package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for all date-only fields.
const DateLayout = "2006-01-02"

// ValidateUUID validates UUID path/query parameters.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ParseDate parses a required YYYY-MM-DD date string.
func ParseDate(dateStr, fieldName string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("%s is required", fieldName)
	}

	date, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format", fieldName)
	}
	return date, nil
}

// ParseOptionalDate parses an optional YYYY-MM-DD date string. An empty string
// yields nil, matching "no end date" semantics.
func ParseOptionalDate(dateStr, fieldName string) (*time.Time, error) {
	if strings.TrimSpace(dateStr) == "" {
		return nil, nil
	}
	date, err := ParseDate(dateStr, fieldName)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

// FormatDate renders a date-only field for responses.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatOptionalDate renders a nullable date-only field for responses.
func FormatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
