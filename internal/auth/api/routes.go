package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"restaurant-waste/internal/auth/app"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

type Handler struct {
	service *app.AuthService
	logger  *util.Logger
}

func NewHandler(s *app.AuthService, logger *util.Logger) *Handler {
	return &Handler{service: s, logger: logger}
}

// RegisterRoutes mounts /accounts, /users and /employees. Registration,
// login, refresh and logout are public.
func (h *Handler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Route("/accounts", func(r chi.Router) {
		r.Post("/register", h.RegisterOwner)
		r.Post("/login", h.Login)
		r.Post("/token/refresh", h.Refresh)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.RequireRoles(models.RoleOwner))
			r.Get("/me", h.OwnerProfile)
			r.Patch("/me", h.UpdateOwnerProfile)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.RegisterUser)
		r.With(auth).Get("/me", h.CurrentUser)
	})

	r.Route("/employees", func(r chi.Router) {
		r.Post("/register", h.RegisterEmployee)

		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.RequireRoles(models.RoleOwner))
			r.Get("/", h.Employees)
			r.Post("/", h.CreateEmployee)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.RequireRoles(models.RoleEmployee))
			r.Get("/me", h.EmployeeProfile)
			r.Patch("/me", h.UpdateEmployeeProfile)
		})
	})
}
