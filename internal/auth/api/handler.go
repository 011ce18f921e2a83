package api

import (
	"context"
	"net/http"
	"time"

	"restaurant-waste/internal/auth/domain"
	"restaurant-waste/internal/shared/middleware"
	"restaurant-waste/internal/shared/models"
	"restaurant-waste/internal/shared/util"
)

func (h *Handler) RegisterOwner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.RegisterOwnerRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	owner, err := h.service.RegisterOwner(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, map[string]interface{}{
		"user_id": owner.UserID,
		"owner":   owner,
		"role":    models.RoleOwner,
	})
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req models.NewAccount
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	user, err := h.service.RegisterUser(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.LoginRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	pair, err := h.service.Login(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, pair)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.RefreshRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	pair, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, pair)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.RefreshRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	if err := h.service.Logout(ctx, req.RefreshToken); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.service.CurrentUser(ctx, id.UserID)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, user)
}

func (h *Handler) OwnerProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	owner, err := h.service.OwnerProfile(ctx, id.UserID)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, owner)
}

func (h *Handler) UpdateOwnerProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.UpdateOwnerRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	owner, err := h.service.UpdateOwnerProfile(ctx, id.UserID, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, owner)
}

func (h *Handler) Employees(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.Employees(ctx, id.UserID)
	if err != nil {
		h.logger.Error("AuthHandler.Employees", "failed to list employees", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, list)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.CreateEmployeeRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	emp, err := h.service.CreateEmployee(ctx, id.UserID, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, emp)
}

func (h *Handler) RegisterEmployee(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.CreateEmployeeRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	emp, err := h.service.RegisterEmployee(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, emp)
}

func (h *Handler) EmployeeProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	emp, err := h.service.EmployeeProfile(ctx, id.UserID)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, emp)
}

func (h *Handler) UpdateEmployeeProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req domain.UpdateEmployeeRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}

	emp, err := h.service.UpdateEmployeeProfile(ctx, id.UserID, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, emp)
}
