package validation

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"restaurant-waste/internal/shared/apperrors"
)

// ValidateCoordinates validates latitude and longitude values
func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return apperrors.Validation("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return apperrors.Validation("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateUUID validates that a string is a valid UUID
func ValidateUUID(id, fieldName string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.Validation("%s must be a valid UUID", fieldName)
	}
	return nil
}

// IsUUID reports whether id can be stored in a UUID column.
func IsUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func ValidatePositiveFloat(value float64, fieldName string) error {
	if value <= 0 {
		return apperrors.Validation("%s must be positive", fieldName)
	}
	return nil
}

func ValidatePositiveInt(value int, fieldName string) error {
	if value <= 0 {
		return apperrors.Validation("%s must be positive", fieldName)
	}
	return nil
}

func ValidateNonNegativeFloat(value float64, fieldName string) error {
	if value < 0 {
		return apperrors.Validation("%s must be non-negative", fieldName)
	}
	return nil
}

// ValidateStringNotEmpty treats whitespace-only strings as empty.
func ValidateStringNotEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.Validation("%s is required", fieldName)
	}
	return nil
}

// ValidateEmail accepts an empty address; callers that need one check
// ValidateStringNotEmpty first.
func ValidateEmail(value string) error {
	if value == "" {
		return nil
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return apperrors.Validation("email is not a valid address")
	}
	return nil
}

func ValidateOneOf(value, fieldName string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apperrors.Validation("%s must be one of %s", fieldName, strings.Join(allowed, ", "))
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(page, pageSize int) error {
	if page < 1 {
		return apperrors.Validation("page must be >= 1")
	}
	if pageSize < 1 {
		return apperrors.Validation("page_size must be >= 1")
	}
	if pageSize > 100 {
		return apperrors.Validation("page_size must be <= 100")
	}
	return nil
}
