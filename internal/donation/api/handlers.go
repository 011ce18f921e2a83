package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restaurant-waste/internal/donation/app"
	"restaurant-waste/internal/donation/domain"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/util"
)

type Handler struct {
	service *app.DonationService
	logger  *util.Logger
}

func NewHandler(s *app.DonationService, logger *util.Logger) *Handler {
	return &Handler{service: s, logger: logger}
}

// RegisterRoutes mounts /donations. Drive listing is public.
func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/donations", func(r chi.Router) {
		r.Get("/drives", h.ListDrives)
		r.Get("/drives/{driveID}", h.GetDrive)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/participations", h.ListMine)
			r.Post("/participations", h.Participate)
			r.With(middleware.RequireAdmin).Post("/participations/{participationID}/mark_completed", h.MarkCompleted)
		})
	})
}

func (h *Handler) ListDrives(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.ListDrives(ctx)
	if err != nil {
		h.logger.Error("DonationHandler.ListDrives", "failed to list drives", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}

func (h *Handler) GetDrive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	drive, err := h.service.GetDrive(ctx, chi.URLParam(r, "driveID"))
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, drive)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.ListMine(ctx, id.UserID)
	if err != nil {
		h.logger.Error("DonationHandler.ListMine", "failed to list participations", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}

func (h *Handler) Participate(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}

	var req domain.ParticipateRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.service.Participate(ctx, id.UserID, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, p)
}

func (h *Handler) MarkCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.service.MarkCompleted(ctx, chi.URLParam(r, "participationID"))
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, map[string]interface{}{
		"message":       "Donation marked as completed and reward given.",
		"participation": p,
	})
}
