package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-waste/internal/admin/app"
	"restaurant-waste/internal/admin/repo"
	rewardsapp "restaurant-waste/internal/rewards/app"
	rewardsrepo "restaurant-waste/internal/rewards/repo"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
	subscriptionapp "restaurant-waste/internal/subscription/app"
	subscription "restaurant-waste/internal/subscription/domain"
	subscriptionrepo "restaurant-waste/internal/subscription/repo"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type emptyMetrics struct{}

func (emptyMetrics) GetSystemMetrics(context.Context) (*repo.SystemMetrics, error) {
	return &repo.SystemMetrics{}, nil
}

func (emptyMetrics) GetPickupDistribution(context.Context) (repo.Distribution, error) {
	return repo.Distribution{}, nil
}

func (emptyMetrics) GetDriverDistribution(context.Context) (repo.Distribution, error) {
	return repo.Distribution{}, nil
}

func (emptyMetrics) GetActivePickups(context.Context, int, int) ([]repo.ActivePickup, int, error) {
	return []repo.ActivePickup{}, 0, nil
}

func as(admin bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := models.Identity{UserID: "u-1", Role: models.RoleUser, IsAdmin: admin}
			next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), id)))
		})
	}
}

func router(t *testing.T, admin bool) http.Handler {
	t.Helper()
	logger := util.NewWithOptions(io.Discard, "error", "text")
	vouchers := rewardsrepo.NewMemoryRepo()
	rewardsSvc := rewardsapp.NewRewardsService(vouchers, passthroughTx{},
		rewardsapp.NewLedger(vouchers, passthroughTx{}, logger), logger)
	plans := subscriptionapp.NewSubscriptionService(subscriptionrepo.NewMemoryRepo(), vouchers, passthroughTx{}, logger)

	svc := app.NewAdminService(emptyMetrics{}, app.Catalog{Vouchers: rewardsSvc, Plans: plans}, logger)
	r := chi.NewRouter()
	NewHandler(svc, logger).RegisterRoutes(r, as(admin))
	return r
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	rec := httptest.NewRecorder()
	router(t, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/overview", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	router(t, true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/overview", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePlanAndVoucher(t *testing.T) {
	r := router(t, true)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/plans",
		strings.NewReader(`{"name":"basic","price":100,"duration_days":30}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var plan subscription.Plan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, "Basic", plan.DisplayName)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/vouchers",
		strings.NewReader(`{"code":"save10","discount_amount":10}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"SAVE10"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/vouchers",
		strings.NewReader(`{"code":"SAVE10","discount_amount":5}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "SAVE10 exists")
	assert.NotContains(t, rec.Body.String(), "current_status")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/vouchers/missing/deactivate", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/vouchers/"+util.GenerateUUID()+"/deactivate", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
