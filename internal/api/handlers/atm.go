package handlers

import (
	"fmt"
	"net/http"

	"github.com/baharkarakas/atm-backend/internal/api/httpx"
	"github.com/baharkarakas/atm-backend/internal/api/validate"
	"github.com/baharkarakas/atm-backend/internal/middleware"
	"github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/baharkarakas/atm-backend/internal/services"
	"github.com/shopspring/decimal"
)

// ATMHandler serves the logged-in menu: balance, deposit, withdraw, history.
type ATMHandler struct {
	Txns    *services.TransactionService
	Balance *services.BalanceService
}

func NewATMHandler(txns *services.TransactionService, balance *services.BalanceService) *ATMHandler {
	return &ATMHandler{Txns: txns, Balance: balance}
}

type amountReq struct {
	Amount *decimal.Decimal `json:"amount"`
}

type balanceResp struct {
	Message string          `json:"message,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

func (h *ATMHandler) CheckBalance(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())
	b, err := h.Balance.Check(r.Context(), s)
	if err != nil {
		httpx.WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *ATMHandler) readAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req amountReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
		return decimal.Decimal{}, false
	}
	if errs := validate.Collect(validate.AmountPresent("amount", req.Amount)); errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", errs.Error(), errs)
		return decimal.Decimal{}, false
	}
	return *req.Amount, true
}

func (h *ATMHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())
	amt, ok := h.readAmount(w, r)
	if !ok {
		return
	}
	b, err := h.Txns.Deposit(r.Context(), s, amt)
	if err != nil {
		httpx.WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, balanceResp{
		Message: fmt.Sprintf("Deposited %s. New Balance %s", amt, b),
		Balance: b,
	})
}

func (h *ATMHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())
	amt, ok := h.readAmount(w, r)
	if !ok {
		return
	}
	b, err := h.Txns.Withdraw(r.Context(), s, amt)
	if err != nil {
		httpx.WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, balanceResp{
		Message: fmt.Sprintf("Withdrawn %s. New Balance %s", amt, b),
		Balance: b,
	})
}

func (h *ATMHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFrom(r.Context())
	limit, offset, errs := pageParams(r)
	if errs != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", errs.Error(), errs)
		return
	}
	txs, err := h.Txns.History(r.Context(), s, limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txs)
}

func pageParams(r *http.Request) (int, int, validate.Errs) {
	q := r.URL.Query()
	limit, lerr := validate.IntQuery("limit", q.Get("limit"), repository.DefaultListLimit, 1)
	offset, oerr := validate.IntQuery("offset", q.Get("offset"), 0, 0)
	return limit, offset, validate.Collect(lerr, oerr)
}
