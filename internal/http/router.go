package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sempreviva/dashboard/internal/http/dashboard"
	"github.com/sempreviva/dashboard/internal/http/transaction"
	"github.com/sempreviva/dashboard/internal/http/upload"
)

func New(
	allowedOrigins []string,
	dashboardV1 *dashboard.Handler,
	transactionsV1 *transaction.Handler,
	uploadV1 *upload.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/dashboard", dashboardV1.Routes)
		r.Route("/transactions", transactionsV1.Routes)
		r.Group(uploadV1.Routes)
	})

	return router
}
