package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/middleware"
	shared "restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

// stubService answers for a single driver owned by driver-user-1.
type stubService struct {
	pings []models.Location
}

var stubDriver = models.Driver{ID: "d-1", UserID: "driver-user-1", FullName: "Juan Dela Cruz", IsActive: true, Status: models.DriverAvailable}

func (s *stubService) RegisterDriver(_ context.Context, req models.RegisterRequest) (*models.Driver, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return nil, apperrors.Validation("full_name is required")
	}
	d := stubDriver
	d.FullName = req.FullName
	return &d, nil
}

func (s *stubService) CreateProfile(context.Context, string, models.Profile) (*models.Driver, error) {
	return nil, apperrors.Duplicate("driver profile for user", "u-1")
}

func (s *stubService) ListDrivers(context.Context) ([]models.Driver, error) {
	return []models.Driver{stubDriver}, nil
}

func (s *stubService) Me(_ context.Context, userID string) (*models.Driver, error) {
	if userID != stubDriver.UserID {
		return nil, apperrors.NotFound("driver")
	}
	d := stubDriver
	return &d, nil
}

func (s *stubService) UpdateMe(ctx context.Context, userID string, _ models.UpdateRequest) (*models.Driver, error) {
	return s.Me(ctx, userID)
}

func (s *stubService) UpdateStatus(_ context.Context, _ string, status models.DriverStatus) (*models.Driver, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("unknown driver status")
	}
	d := stubDriver
	d.Status = status
	return &d, nil
}

func (s *stubService) UpdateLocation(_ context.Context, _ string, lat, lng float64) (*models.Location, error) {
	loc := models.Location{ID: util.GenerateUUID(), DriverID: stubDriver.ID, Latitude: lat, Longitude: lng,
		RecordedAt: time.Now(), IsCurrent: true}
	s.pings = append(s.pings, loc)
	return &loc, nil
}

func (s *stubService) LocationHistory(_ context.Context, _ string, limit int) ([]models.Location, error) {
	if limit < 0 {
		return nil, apperrors.Validation("limit must not be negative")
	}
	return s.pings, nil
}

func identityHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get("X-Test-User")
		if user == "" {
			util.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id := shared.Identity{UserID: user, Role: shared.Role(r.Header.Get("X-Test-Role"))}
		next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), id)))
	})
}

func setup(t *testing.T) (http.Handler, *stubService) {
	t.Helper()
	svc := &stubService{}
	r := chi.NewRouter()
	NewHandler(svc, util.NewWithOptions(io.Discard, "error", "text")).RegisterRoutes(r, identityHeader)
	return r, svc
}

func do(router http.Handler, method, path, user string, role shared.Role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-Test-User", user)
		req.Header.Set("X-Test-Role", string(role))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterDriverIsPublic(t *testing.T) {
	router, _ := setup(t)

	rec := do(router, http.MethodPost, "/drivers/register", "", "",
		`{"username":"juan","password":"secret123","full_name":"Juan Dela Cruz","vehicle_type":"truck"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(router, http.MethodPost, "/drivers/register", "", "", `{"username":"juan","password":"secret123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDriverSelfRoutesNeedDriverRole(t *testing.T) {
	router, _ := setup(t)

	rec := do(router, http.MethodGet, "/drivers/me", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodGet, "/drivers/me", "owner-1", shared.RoleOwner, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodGet, "/drivers/me", "driver-user-1", shared.RoleDriver, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Juan Dela Cruz")

	rec = do(router, http.MethodGet, "/drivers", "owner-1", shared.RoleOwner, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatusEndpoint(t *testing.T) {
	router, _ := setup(t)

	rec := do(router, http.MethodPatch, "/drivers/me/status", "driver-user-1", shared.RoleDriver, `{"status":"on_pickup"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"on_pickup"`)

	rec = do(router, http.MethodPatch, "/drivers/me/status", "driver-user-1", shared.RoleDriver, `{"status":"sleeping"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateLocationEndpoint(t *testing.T) {
	router, svc := setup(t)

	rec := do(router, http.MethodPatch, "/drivers/update_location", "driver-user-1", shared.RoleDriver, `{"latitude":7.07}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.pings)

	rec = do(router, http.MethodPatch, "/drivers/update_location", "driver-user-1", shared.RoleDriver,
		`{"latitude":7.0731,"longitude":125.6128}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, svc.pings, 1)
	assert.InDelta(t, 125.6128, svc.pings[0].Longitude, 1e-9)

	rec = do(router, http.MethodGet, "/drivers/me/locations?limit=abc", "driver-user-1", shared.RoleDriver, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodGet, "/drivers/me/locations?limit=5", "driver-user-1", shared.RoleDriver, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_current":true`)
}

func TestCreateProfileConflict(t *testing.T) {
	router, _ := setup(t)

	rec := do(router, http.MethodPost, "/drivers", "u-1", shared.RoleUser, `{"full_name":"Juan"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "current_status")
}
