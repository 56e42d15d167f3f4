// Package httpapi exposes quote calculation and formula validation over HTTP.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/aluquote/internal/catalog"
	"github.com/Simplici0/aluquote/internal/formula"
	"github.com/Simplici0/aluquote/internal/pricing"
)

// maxBodyBytes bounds request bodies; 50 items fit comfortably.
const maxBodyBytes = 1 << 20

// Server holds the handlers' collaborators.
type Server struct {
	calc   *pricing.Calculator
	source catalog.Source
	eval   *formula.Evaluator
	health func(context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithHealthCheck sets the probe run by GET /healthz, typically a database ping.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(s *Server) { s.health = check }
}

// New returns a server calculating with calc against catalog snapshots from src.
// ev is used for formula validation and should share calc's parse cache.
func New(calc *pricing.Calculator, src catalog.Source, ev *formula.Evaluator, opts ...Option) *Server {
	s := &Server{calc: calc, source: src, eval: ev}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/quotes/calculate", s.handleCalculate)
		r.Post("/formulas/validate", s.handleValidateFormula)
		r.Get("/products", s.handleProducts)
		r.Get("/products/{id}", s.handleProduct)
		r.Get("/materials", s.handleMaterials)
	})
	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Printf("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			log.Printf("health check failed: %v", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
