// Package web exposes the tracker operations as a JSON API. Every /api route
// requires a bearer token; the token subject is the caller identity.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"worktime/internal/auth"
	"worktime/internal/timeutil"
	"worktime/service"
)

// Services bundles the operations the API serves.
type Services struct {
	Entries *service.TimeEntryService
	Tasks   *service.TaskService
	Admin   *service.AdminService
}

type Options struct {
	Auth           auth.Config
	AllowedOrigins []string
	// Location is used when a request carries no X-Timezone header.
	Location *time.Location
	Locale   timeutil.Locale
	// Health reports storage reachability for /healthz.
	Health func(ctx context.Context) error
}

type Server struct {
	svc    Services
	opts   Options
	router chi.Router
	now    func() time.Time
}

func NewServer(svc Services, opts Options) http.Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Locale == "" {
		opts.Locale = timeutil.DefaultLocale
	}
	server := &Server{svc: svc, opts: opts, now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", timezoneHeader, middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", server.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.NewMiddleware(opts.Auth).Wrap)

		r.Route("/time-entries", func(r chi.Router) {
			r.Get("/", server.handleEntriesMonth)
			r.Get("/grouped", server.handleEntriesGrouped)
			r.Get("/day", server.handleEntriesDay)
			r.Get("/week", server.handleEntriesWeek)
			r.Get("/latest", server.handleEntriesLatest)
			r.Post("/", server.handleEntryCreate)
			r.Patch("/{id}", server.handleEntryUpdate)
			r.Delete("/{id}", server.handleEntryDelete)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", server.handleTasksAll)
			r.Get("/day", server.handleTasksDay)
			r.Get("/week", server.handleTasksWeek)
			r.Get("/month", server.handleTasksMonth)
			r.Get("/{id}", server.handleTaskGet)
			r.Post("/", server.handleTaskCreate)
			r.Patch("/{id}", server.handleTaskUpdate)
			r.Delete("/{id}", server.handleTaskDelete)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/worklogs", server.handleAdminWorklogs)
			r.Get("/users", server.handleAdminUsers)
		})
	})

	server.router = r
	return server
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
