package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/util"
	"restaurant-waste/internal/subscription/app"
	"restaurant-waste/internal/subscription/domain"
)

type Handler struct {
	service *app.SubscriptionService
	logger  *util.Logger
}

func NewHandler(s *app.SubscriptionService, logger *util.Logger) *Handler {
	return &Handler{service: s, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/subscriptions", func(r chi.Router) {
		r.Use(auth)
		r.Get("/plans", h.Plans)
		r.Get("/mine", h.Mine)
		r.Post("/subscribe", h.Subscribe)
		r.Post("/cancel", h.Cancel)
		r.Get("/payments", h.Payments)
	})
}

func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	plans, err := h.service.Plans(ctx)
	if err != nil {
		h.logger.Error("SubscriptionHandler.Plans", "failed to list plans", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, plans)
}

func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sub, err := h.service.Mine(ctx, id.UserID)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, sub)
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}

	var req domain.SubscribeRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	receipt, err := h.service.Subscribe(ctx, id.UserID, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, map[string]interface{}{
		"message":      "Subscription activated successfully!",
		"subscription": receipt,
	})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.service.Cancel(ctx, id.UserID); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, map[string]string{
		"message": "Auto-renew disabled. Subscription will not renew.",
	})
}

func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.Payments(ctx, id.UserID)
	if err != nil {
		h.logger.Error("SubscriptionHandler.Payments", "failed to list payments", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}
