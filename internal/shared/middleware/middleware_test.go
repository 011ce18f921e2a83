package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/models"
)

type stubParser struct {
	claims *models.Claims
}

func (s stubParser) ParseAccess(token string) (*models.Claims, error) {
	if token != "good" {
		return nil, errors.Join(apperrors.ErrUnauthorized, errors.New("bad token"))
	}
	return s.claims, nil
}

func driverClaims() *models.Claims {
	c := &models.Claims{Role: models.RoleDriver, ProfileID: "d-1"}
	c.Subject = "u-1"
	return c
}

func TestAuthenticateStoresIdentity(t *testing.T) {
	var got models.Identity
	h := Authenticate(stubParser{claims: driverClaims()})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u-1", got.UserID)
	assert.Equal(t, models.RoleDriver, got.Role)
	assert.Equal(t, "d-1", got.ProfileID)
}

func TestAuthenticateRejectsMissingAndBadTokens(t *testing.T) {
	h := Authenticate(stubParser{claims: driverClaims()})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Token good", "Bearer bad"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestRequireRolesAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), models.Identity{UserID: "u-1", Role: models.RoleOwner}))

	rec := httptest.NewRecorder()
	RequireRoles(models.RoleDriver)(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	RequireRoles(models.RoleOwner, models.RoleEmployee)(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	RequireAdmin(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
