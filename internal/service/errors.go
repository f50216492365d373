package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned (wrapped) when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrIllegalState is returned (wrapped) when an operation does not apply to
	// the entity's current state, e.g. converting an enquiry twice.
	ErrIllegalState = errors.New("illegal state")
)

// ValidationError reports a missing or malformed business field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func notFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

// lookupErr turns gorm's record-not-found into ErrNotFound and wraps the rest.
func lookupErr(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("load %s %v: %w", entity, id, err)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their label tag, e.g. "Phone number"
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// requireFields validates `validate` tags on s and reports the first failing
// field using its label tag (falls back to the struct field name).
func requireFields(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return invalid(field, "is required")
	case "oneof":
		return invalid(field, "must be one of "+fe.Param())
	default:
		return invalid(field, "is invalid")
	}
}

func trimAll(ptrs ...*string) {
	for _, p := range ptrs {
		*p = strings.TrimSpace(*p)
	}
}
