package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Sets up chi router, middlewares and defines all api endpoints
func (s *Server) routes() {
	// Inject routes
	s.r = chi.NewRouter()

	// Basic CORS
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Inject chi middleware
	// Injects a request ID into the context of each request
	s.r.Use(middleware.RequestID)
	// Sets a http.Request's RemoteAddr to either X-Real-IP or X-Forwarded-For
	s.r.Use(middleware.RealIP)
	// Logs the start and end of each request with the elapsed processing time
	s.r.Use(middleware.Logger)
	// Gracefully absorb panics and prints the stack trace
	s.r.Use(middleware.Recoverer)
	// Sets HTTP response headers as content type JSON
	s.r.Use(middleware.SetHeader("Content-Type", "application/json"))

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	s.r.Use(middleware.Timeout(60 * time.Second))

	s.r.Route("/v1", func(r chi.Router) {

		// service health + snapshot freshness
		r.Get("/health", s.handleHealthGet)

		// unified payments
		r.Get("/payments", s.handlePaymentsGet)
		r.Get("/payments/summary", s.handleSummaryGet)
		r.Get("/payments/timeline", s.handleTimelineGet)
	})
}
