package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"restaurant-waste/internal/driver/models"
	"restaurant-waste/internal/shared/apperrors"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/util"
)

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req models.StatusRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	driver, err := h.service.UpdateStatus(ctx, id.UserID, req.Status)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	util.ResponseInJson(w, http.StatusOK, map[string]interface{}{
		"driver_id": driver.ID,
		"status":    driver.Status,
	})
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req models.LocationRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		util.ErrResponseInJson(w, apperrors.Validation("latitude and longitude are required"))
		return
	}

	loc, err := h.service.UpdateLocation(ctx, id.UserID, *req.Latitude, *req.Longitude)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, loc)
}

func (h *Handler) LocationHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			util.ErrResponseInJson(w, apperrors.Validation("limit must be an integer"))
			return
		}
		limit = n
	}

	list, err := h.service.LocationHistory(ctx, id.UserID, limit)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}
