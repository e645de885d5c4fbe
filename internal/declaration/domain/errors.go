package declaration

import "errors"

var (
	// ErrInvalidRegimeConfig is returned when a regime configuration fails validation.
	ErrInvalidRegimeConfig = errors.New("declaration: invalid regime config")
	// ErrMissingDeclarantTaxID is returned when the declarant has no tax id.
	ErrMissingDeclarantTaxID = errors.New("declaration: missing declarant tax id")
	// ErrQualificationNotFound is returned when a qualification lookup misses.
	ErrQualificationNotFound = errors.New("declaration: qualification not found")
	// ErrFilingNotFound is returned when a filing lookup misses.
	ErrFilingNotFound = errors.New("declaration: filing not found")
)
