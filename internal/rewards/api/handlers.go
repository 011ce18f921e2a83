package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restaurant-waste/internal/rewards/app"
	"restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/util"
)

type Handler struct {
	service *app.RewardsService
	logger  *util.Logger
}

func NewHandler(s *app.RewardsService, logger *util.Logger) *Handler {
	return &Handler{service: s, logger: logger}
}

// RegisterRoutes mounts /rewards behind auth.
func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/rewards", func(r chi.Router) {
		r.Use(auth)
		r.Get("/points", h.Points)
		r.Get("/transactions", h.Transactions)
		r.Get("/vouchers", h.Vouchers)
		r.Post("/redeem", h.Redeem)
		r.Get("/redemptions", h.Redemptions)
	})
}

func (h *Handler) Points(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	balance, err := h.service.Balance(ctx, id.UserID)
	if err != nil {
		h.logger.Error("RewardsHandler.Points", "failed to load balance", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, balance)
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.Transactions(ctx, id.UserID)
	if err != nil {
		h.logger.Error("RewardsHandler.Transactions", "failed to list transactions", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}

func (h *Handler) Vouchers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.Vouchers(ctx)
	if err != nil {
		h.logger.Error("RewardsHandler.Vouchers", "failed to list vouchers", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}

	var req domain.RedeemRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	redemption, err := h.service.Redeem(ctx, id.UserID, req.VoucherID)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	balance, err := h.service.Balance(ctx, id.UserID)
	if err != nil {
		h.logger.Warn("RewardsHandler.Redeem", "balance reload failed", "error", err.Error())
		util.ResponseInJson(w, http.StatusCreated, map[string]interface{}{"redemption": redemption})
		return
	}
	util.ResponseInJson(w, http.StatusCreated, map[string]interface{}{
		"redemption":       redemption,
		"remaining_points": balance.Points,
	})
}

func (h *Handler) Redemptions(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.Redemptions(ctx, id.UserID)
	if err != nil {
		h.logger.Error("RewardsHandler.Redemptions", "failed to list redemptions", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}
