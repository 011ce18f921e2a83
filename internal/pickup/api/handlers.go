package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restaurant-waste/internal/pickup/domain"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

func (h *Handler) CreatePickup(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.CreateRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	p, err := h.service.CreatePickup(ctx, id, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, p)
}

func (h *Handler) ListPickups(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.ListPickups(ctx, id)
	if err != nil {
		h.logger.Error("PickupHandler.ListPickups", "failed to list pickups", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}

func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.ListAvailable(ctx, id)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}

func (h *Handler) GetPickup(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.service.GetPickup(ctx, id, chi.URLParam(r, "pickupID"))
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, p)
}

func (h *Handler) UpdatePickup(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.UpdateRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	p, err := h.service.UpdatePickup(ctx, id, chi.URLParam(r, "pickupID"), req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, p)
}

type transitionFunc func(ctx context.Context, id models.Identity, pickupID string) (*domain.Pickup, error)

// transition adapts accept, start, complete and cancel, which share one
// request shape.
func (h *Handler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.CurrentIdentity(w, r)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		p, err := fn(ctx, id, chi.URLParam(r, "pickupID"))
		if err != nil {
			util.ErrResponseInJson(w, err)
			return
		}
		util.ResponseInJson(w, http.StatusOK, p)
	}
}
