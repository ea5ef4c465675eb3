// Package validation checks board documents and command input using the
// validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	domainerrors "github.com/ArturoRiosMock/CRMAIRE/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field any, tag string) error {
	if err := v.v.Var(field, tag); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Board parses a full board document and checks that columns, followers
// and tags are all present with the expected JSON types. Unknown members,
// such as backup annotations, are ignored.
func (v *Validator) Board(data []byte) (*domain.Board, error) {
	doc, err := domain.DecodeDocument(data)
	if err != nil {
		return nil, domainerrors.Validationf("invalid board document: %v", err)
	}
	if err := v.Validate(doc); err != nil {
		return nil, err
	}
	return doc.Board(), nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		name := e.Field()
		if name == "" {
			name = "value"
		}
		fieldErrors[name] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed: "+summarize(fieldErrors), fieldErrors)
}

// summarize renders field errors in a stable order for the message.
func summarize(fieldErrors map[string]string) string {
	names := make([]string, 0, len(fieldErrors))
	for name := range fieldErrors {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + fieldErrors[name]
	}
	return strings.Join(parts, ", ")
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "hexcolor":
		return "must be a hex color such as #f59e0b"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
