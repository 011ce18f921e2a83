package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"restaurant-waste/internal/shared/middleware"
)

// RegisterRoutes mounts /admin. Every route needs an admin token.
func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth, middleware.RequireAdmin)

		r.Get("/overview", h.GetSystemOverview)
		r.Get("/pickups/active", h.GetActivePickups)

		r.Post("/vouchers", h.CreateVoucher)
		r.Post("/vouchers/{voucherID}/deactivate", h.DeactivateVoucher)
		r.Post("/drives", h.CreateDrive)
		r.Post("/plans", h.CreatePlan)
	})
}
