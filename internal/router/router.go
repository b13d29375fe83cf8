package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"postpilot-backend/internal/handlers"
	"postpilot-backend/internal/middleware"
)

func New(
	analysisHandler *handlers.AnalysisHandler,
	speechHandler *handlers.SpeechHandler,
	corsOrigins string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(corsOrigins))

	// Analysis rate limiter (30 req/min per IP)
	apiLimiter := middleware.NewRateLimiter(30, time.Minute)

	// Health check
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"service":"postpilot-backend","status":"running"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLimiter.Middleware)
		r.Post("/analyze-url", analysisHandler.AnalyzeURL)
		r.Post("/speech-to-text", speechHandler.SpeechToText)
	})

	return r
}
