package http

import (
	"net/http"

	"exam-scoring-service/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the scoring endpoints.
func NewRouter(service *app.ScoringService, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	h := NewHandler(service)
	r.Route("/api", func(r chi.Router) {
		r.Post("/submit-exam", h.SubmitExam)
		r.Post("/recalculate-scores", h.RecalculateScores)
	})
	r.Get("/ws/recalculate", NewWSHandler(service, allowedOrigins).ServeWS)
	return r
}
