package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"restaurant-waste/internal/pickup/app"
	"restaurant-waste/internal/shared/util"
)

type Handler struct {
	service *app.PickupService
	hub     *Hub
	logger  *util.Logger
}

func NewHandler(service *app.PickupService, hub *Hub, logger *util.Logger) *Handler {
	return &Handler{service: service, hub: hub, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/pickups", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", h.ListPickups)
		r.Post("/", h.CreatePickup)
		r.Get("/available", h.ListAvailable)

		r.Route("/{pickupID}", func(r chi.Router) {
			r.Get("/", h.GetPickup)
			r.Patch("/", h.UpdatePickup)
			r.Patch("/accept", h.transition(h.service.AcceptPickup))
			r.Patch("/start", h.transition(h.service.StartPickup))
			r.Patch("/complete", h.transition(h.service.CompletePickup))
			r.Patch("/cancel", h.transition(h.service.CancelPickup))
		})
	})

	if h.hub != nil {
		r.Get("/ws/pickups", h.hub.ServeWS)
	}
}
