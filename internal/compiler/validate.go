package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/cohort/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrInvalidIdentifier = "E101" // type or property id is not an identifier
	ErrDuplicateType     = "E102" // group type declared twice
	ErrDuplicateProperty = "E103" // property declared twice within a type
	ErrMalformedProperty = "E104" // property definition is inconsistent
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks compiled group types against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(specs []ir.GroupTypeSpec) []ValidationError {
	var errs []ValidationError
	types := make(map[ir.GroupTypeID]bool, len(specs))

	for i, spec := range specs {
		path := fmt.Sprintf("group_type[%d]", i)

		if !identifierPattern.MatchString(string(spec.ID)) {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("group type id %q is not an identifier", spec.ID),
				Code:    ErrInvalidIdentifier,
			})
		}
		if types[spec.ID] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate group type %q", spec.ID),
				Code:    ErrDuplicateType,
			})
		}
		types[spec.ID] = true

		props := make(map[ir.PropertyID]bool, len(spec.Properties))
		for j, prop := range spec.Properties {
			field := fmt.Sprintf("%s.property[%d]", path, j)

			if !identifierPattern.MatchString(string(prop.ID)) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("property id %q is not an identifier", prop.ID),
					Code:    ErrInvalidIdentifier,
				})
			}
			if props[prop.ID] {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("duplicate property %q in %q", prop.ID, spec.ID),
					Code:    ErrDuplicateProperty,
				})
			}
			props[prop.ID] = true

			if err := prop.Definition.Validate(); err != nil {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: err.Error(),
					Code:    ErrMalformedProperty,
				})
			}
		}
	}
	return errs
}
