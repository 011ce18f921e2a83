package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrConflict             = errors.New("conflict")
	ErrInvalidState         = errors.New("invalid state")
	ErrInsufficientPoints   = errors.New("insufficient points")
	ErrInvalidVoucher       = errors.New("invalid voucher")
	ErrInvalidPlan          = errors.New("invalid plan")
	ErrNoActiveSubscription = errors.New("no active subscription")
)

// StateError reports an action attempted from an incompatible state and
// carries the state the entity is currently in.
type StateError struct {
	Kind    error
	Entity  string
	Current string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s is %s", e.Kind, e.Entity, e.Current)
}

func (e *StateError) Unwrap() error { return e.Kind }

func InvalidState(entity, current string) error {
	return &StateError{Kind: ErrInvalidState, Entity: entity, Current: current}
}

func Conflict(entity, current string) error {
	return &StateError{Kind: ErrConflict, Entity: entity, Current: current}
}

// Duplicate is a uniqueness conflict. It carries no state to echo.
func Duplicate(entity, key string) error {
	return fmt.Errorf("%w: %s %s exists", ErrConflict, entity, key)
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(entity string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, entity)
}

func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// CurrentState returns the state echoed by a StateError, if any.
func CurrentState(err error) (string, bool) {
	var se *StateError
	if errors.As(err, &se) {
		return se.Current, true
	}
	return "", false
}

func CheckError(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidVoucher),
		errors.Is(err, ErrInvalidPlan),
		errors.Is(err, ErrInsufficientPoints),
		errors.Is(err, ErrNoActiveSubscription),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}
