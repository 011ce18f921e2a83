package handlers

import (
	"context"
	"net/http"
	"time"

	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/util"
)

func (h *Handler) RegisterDriver(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req models.RegisterRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	driver, err := h.service.RegisterDriver(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	util.ResponseInJson(w, http.StatusCreated, map[string]interface{}{
		"driver":  driver,
		"message": "You have successfully registered as driver",
	})
}

// CreateProfile attaches a driver profile to the authenticated account.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req models.Profile
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	driver, err := h.service.CreateProfile(ctx, id.UserID, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, driver)
}

func (h *Handler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.ListDrivers(ctx)
	if err != nil {
		h.logger.Error("DriverHandler.ListDrivers", "failed to list drivers", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	driver, err := h.service.Me(ctx, id.UserID)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, driver)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req models.UpdateRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	driver, err := h.service.UpdateMe(ctx, id.UserID, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, driver)
}
