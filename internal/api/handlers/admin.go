package handlers

import (
	"net/http"

	"github.com/baharkarakas/atm-backend/internal/api/httpx"
	"github.com/baharkarakas/atm-backend/internal/api/validate"
	"github.com/baharkarakas/atm-backend/internal/services"
)

type AdminHandler struct {
	Admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{Admin: admin}
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	limit, offset, errs := pageParams(r)
	if errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", errs.Error(), errs)
		return
	}
	users, err := h.Admin.Users(r.Context(), r.URL.Query().Get("name"), limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	limit, offset, errs := pageParams(r)
	if errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", errs.Error(), errs)
		return
	}
	txs, err := h.Admin.Transactions(r.Context(), r.URL.Query().Get("type"), limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txs)
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, ef := validate.IntQuery("limit", r.URL.Query().Get("limit"), 100, 1)
	if ef != nil {
		errs := validate.Collect(ef)
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", errs.Error(), errs)
		return
	}
	logs, err := h.Admin.AuditLogs(r.Context(), limit)
	if err != nil {
		httpx.WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, logs)
}
