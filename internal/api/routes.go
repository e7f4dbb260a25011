package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires every route onto a chi mux.
func NewRouter(s *Server, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", headerOrganizationID, headerUserID},
			ExposedHeaders: []string{"Retry-After"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(requireOrg)
		r.Get("/conversion/status", s.HandleConversionStatus)
		r.Route("/templates", func(r chi.Router) {
			r.Post("/import", s.HandleImport)
			r.Post("/import/batch", s.HandleBatchImport)
			r.Post("/preview", s.HandlePreview)
			r.Get("/{id}", s.HandleGetTemplate)
		})
	})

	return r
}
