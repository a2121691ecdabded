package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/atm-backend/internal/api/handlers"
	"github.com/baharkarakas/atm-backend/internal/auth"
	"github.com/baharkarakas/atm-backend/internal/config"
	"github.com/baharkarakas/atm-backend/internal/metrics"
	"github.com/baharkarakas/atm-backend/internal/middleware"
	"github.com/baharkarakas/atm-backend/internal/services"
	"github.com/baharkarakas/atm-backend/internal/session"
)

type RouterDeps struct {
	Cfg        config.Config
	TM         *auth.TokenManager
	Sessions   *session.Manager
	AccountSvc *services.AccountService
	BalanceSvc *services.BalanceService
	TxnSvc     *services.TransactionService
	AdminSvc   *services.AdminService
}

func NewRouter(d RouterDeps) http.Handler {
	metrics.Init()

	sh := handlers.NewSessionHandler(d.TM, d.Sessions, d.AccountSvc)
	ah := handlers.NewAccountHandler(d.AccountSvc)
	atm := handlers.NewATMHandler(d.TxnSvc, d.BalanceSvc)
	authn := middleware.NewSessionAuth(d.TM, d.Sessions)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id", "X-Admin-Key"},
		ExposedHeaders: []string{"X-Request-Id"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- public ----------
		r.Post("/sessions", sh.Create)
		r.Post("/accounts", ah.Register)

		// ---------- session ----------
		r.Group(func(r chi.Router) {
			r.Use(authn.Auth)
			r.Get("/session", sh.State)
			r.Post("/session/login", sh.Login)
			r.Post("/session/exit", sh.Exit)

			// ---------- atm menu ----------
			r.Route("/atm", func(r chi.Router) {
				r.Get("/balance", atm.CheckBalance)
				r.Post("/deposit", atm.Deposit)
				r.Post("/withdraw", atm.Withdraw)
				r.Get("/transactions", atm.Transactions)
			})
		})

		// ---------- admin ----------
		if d.Cfg.AdminAPIKey != "" && d.AdminSvc != nil {
			adm := handlers.NewAdminHandler(d.AdminSvc)
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(d.Cfg.AdminAPIKey))
				r.Get("/users", adm.Users)
				r.Get("/transactions", adm.Transactions)
				r.Get("/audit-logs", adm.AuditLogs)
			})
		}
	})

	return r
}
