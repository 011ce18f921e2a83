package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("weight must be positive"), http.StatusBadRequest},
		{"voucher", fmt.Errorf("redeem: %w", ErrInvalidVoucher), http.StatusBadRequest},
		{"points", ErrInsufficientPoints, http.StatusBadRequest},
		{"state", InvalidState("pickup", "completed"), http.StatusBadRequest},
		{"conflict", Conflict("pickup", "accepted"), http.StatusBadRequest},
		{"duplicate", Duplicate("voucher code", "SAVE10"), http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("drivers only"), http.StatusForbidden},
		{"not found", NotFound("pickup"), http.StatusNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CheckError(tc.err))
		})
	}
}

func TestStateErrorEchoesCurrentState(t *testing.T) {
	err := fmt.Errorf("accept: %w", Conflict("pickup", "accepted"))

	require.ErrorIs(t, err, ErrConflict)
	require.NotErrorIs(t, err, ErrInvalidState)

	current, ok := CurrentState(err)
	require.True(t, ok)
	assert.Equal(t, "accepted", current)

	_, ok = CurrentState(ErrNotFound)
	assert.False(t, ok)
}

func TestDuplicateHasNoCurrentState(t *testing.T) {
	err := Duplicate("voucher code", "SAVE10")

	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "voucher code SAVE10 exists")
	_, ok := CurrentState(err)
	assert.False(t, ok)
}
