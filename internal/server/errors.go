// Package server provides the HTTP REST API of the applicant tracker.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/applicant-tracker/internal/comparison"
	"github.com/jonathan/applicant-tracker/internal/fetch"
	"github.com/jonathan/applicant-tracker/internal/scoring"
	"github.com/jonathan/applicant-tracker/internal/store"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a record addressed by the request does not exist
type ErrNotFound struct {
	Entity string
	ID     int64
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *ErrNotFound) Is(target error) bool { return target == store.ErrNotFound }

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid credentials"
}

// ErrUnauthenticated indicates the request carries no valid session
type ErrUnauthenticated struct{}

func (e *ErrUnauthenticated) Error() string {
	return "not authenticated"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation   *ErrValidation
		insufficient *comparison.InsufficientCandidatesError
		credentials  *ErrInvalidCredentials
		unauth       *ErrUnauthenticated
		fetchErr     *fetch.Error
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &insufficient), errors.Is(err, store.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.As(err, &credentials), errors.As(err, &unauth):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scoring.ErrAnalysisInProgress):
		return http.StatusConflict
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validationError converts validator errors into an ErrValidation naming the first failing field.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}
