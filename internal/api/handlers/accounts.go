package handlers

import (
	"net/http"

	"github.com/baharkarakas/atm-backend/internal/api/httpx"
	"github.com/baharkarakas/atm-backend/internal/services"
)

type AccountHandler struct {
	Accounts *services.AccountService
}

func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{Accounts: accounts}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return
	}
	u, err := h.Accounts.Register(r.Context(), req.Name, req.PIN)
	if err != nil {
		httpx.WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, userResp{
		Message: "Account created! Initial balance " + u.Balance.String(),
		User:    u,
	})
}
