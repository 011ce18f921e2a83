package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"restaurant-waste/internal/admin/app"
	donation "restaurant-waste/internal/donation/domain"
	rewards "restaurant-waste/internal/rewards/domain"
	"restaurant-waste/internal/shared/util"
	subscription "restaurant-waste/internal/subscription/domain"
)

type Handler struct {
	service *app.AdminService
	logger  *util.Logger
}

func NewHandler(service *app.AdminService, logger *util.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) GetSystemOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	overview, err := h.service.GetSystemOverview(ctx)
	if err != nil {
		h.logger.Error("AdminHandler.GetSystemOverview", "failed to fetch system overview", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, overview)
}

func (h *Handler) GetActivePickups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, pageSize := 1, 20
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && ps > 0 {
		pageSize = ps
	}

	response, err := h.service.GetActivePickups(ctx, page, pageSize)
	if err != nil {
		h.logger.Error("AdminHandler.GetActivePickups", "failed to fetch active pickups", err)
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, response)
}

func (h *Handler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var req rewards.CreateVoucherRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	v, err := h.service.CreateVoucher(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, v)
}

func (h *Handler) DeactivateVoucher(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "voucherID")
	if err := h.service.DeactivateVoucher(ctx, id); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusOK, map[string]string{"voucher_id": id, "status": "inactive"})
}

func (h *Handler) CreateDrive(w http.ResponseWriter, r *http.Request) {
	var req donation.CreateDriveRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	d, err := h.service.CreateDrive(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, d)
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req subscription.CreatePlanRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.service.CreatePlan(ctx, req)
	if err != nil {
		util.ErrResponseInJson(w, err)
		return
	}
	util.ResponseInJson(w, http.StatusCreated, p)
}
