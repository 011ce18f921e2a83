package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"restaurant-waste/internal/driver/app/usecase"
	"restaurant-waste/internal/shared/middleware"
	shared "restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

type Handler struct {
	service usecase.Service
	logger  *util.Logger
}

func NewHandler(service usecase.Service, logger *util.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/drivers", func(r chi.Router) {
		r.Post("/register", h.RegisterDriver)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.CreateProfile)
			r.Get("/", h.ListDrivers)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.RequireRoles(shared.RoleDriver))
			r.Get("/me", h.Me)
			r.Patch("/me", h.UpdateMe)
			r.Patch("/me/status", h.UpdateStatus)
			r.Get("/me/locations", h.LocationHistory)
			r.Patch("/update_location", h.UpdateLocation)
		})
	})
}
