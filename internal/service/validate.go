package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskboard/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and reports the first failure as a ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.Invalid(field, "%s is required", label(field))
	case "oneof":
		return domain.Invalid(field, "Invalid %s", strings.ReplaceAll(field, "_", " "))
	case "email":
		return domain.Invalid(field, "%s must be a valid email address", label(field))
	case "min":
		return domain.Invalid(field, "%s must be at least %s characters long", label(field), fe.Param())
	default:
		return domain.Invalid(field, "%s is invalid", label(field))
	}
}

// label turns created_by into "Created by".
func label(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func checkStatus(status string) error {
	if !domain.IsStatus(status) {
		return domain.Invalid("status", "Invalid status")
	}
	return nil
}

func checkPriority(priority string) error {
	if !domain.IsPriority(priority) {
		return domain.Invalid("priority", "Invalid priority")
	}
	return nil
}

func checkRole(role string) error {
	if !domain.IsRole(role) {
		return domain.Invalid("role", "Invalid role")
	}
	return nil
}

// normalizeDueDate accepts YYYY-MM-DD or RFC 3339 and returns RFC 3339 UTC.
// Empty input clears the date.
func normalizeDueDate(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, nil
	}
	var (
		t   time.Time
		err error
	)
	if len(v) == len(time.DateOnly) {
		t, err = time.Parse(time.DateOnly, v)
	} else {
		t, err = time.Parse(time.RFC3339, v)
	}
	if err != nil {
		return nil, domain.Invalid("due_date", "Invalid due date %q", v)
	}
	out := t.UTC().Format(time.RFC3339)
	return &out, nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}

func notFound(entity, id string, err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return domain.NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("%s %s: %w", strings.ToLower(entity), id, err)
}
