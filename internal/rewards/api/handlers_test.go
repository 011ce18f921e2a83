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

	"restaurant-waste/internal/rewards/app"
	"restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/rewards/repo"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := models.Identity{UserID: userID, Role: models.RoleOwner}
			next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), id)))
		})
	}
}

func setup(t *testing.T) (http.Handler, *app.RewardsService, *app.Ledger) {
	t.Helper()
	logger := util.NewWithOptions(io.Discard, "error", "text")
	mem := repo.NewMemoryRepo()
	ledger := app.NewLedger(mem, passthroughTx{}, logger)
	svc := app.NewRewardsService(mem, passthroughTx{}, ledger, logger)

	r := chi.NewRouter()
	NewHandler(svc, logger).RegisterRoutes(r, asUser("u-1"))
	return r, svc, ledger
}

func TestRedeemEndpoint(t *testing.T) {
	router, svc, ledger := setup(t)
	ctx := context.Background()

	v, err := svc.CreateVoucher(ctx, domain.CreateVoucherRequest{Code: "FREECOFFEE", PointsRequired: 15})
	require.NoError(t, err)
	_, err = ledger.AddPoints(ctx, "u-1", 20, "seed", domain.Source{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rewards/redeem", strings.NewReader(`{"voucher_id":"`+v.ID+`"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Redemption      domain.Redemption `json:"redemption"`
		RemainingPoints int               `json:"remaining_points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.RemainingPoints)
	assert.Equal(t, domain.RedemptionCompleted, body.Redemption.Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rewards/redeem", strings.NewReader(`{"voucher_id":"`+v.ID+`"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient points")
}

func TestPointsEndpoint(t *testing.T) {
	router, _, ledger := setup(t)
	_, err := ledger.AddPoints(context.Background(), "u-1", 10, "Pickup completed", domain.Source{Type: domain.SourcePickup, ID: "p-1"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rewards/points", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"points":10`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rewards/transactions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source_id":"p-1"`)
}

func TestRedeemRejectsUnknownFields(t *testing.T) {
	router, _, _ := setup(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rewards/redeem", strings.NewReader(`{"voucher":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
