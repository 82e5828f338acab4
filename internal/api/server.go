// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ardenvale/illuminator-go/internal/core"
	"github.com/ardenvale/illuminator-go/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	db    *sql.DB
	store *store.Store
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		db:    app.DB(),
		store: app.Store(),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/users/login", s.handleLogin)
	r.Get("/api/version", s.handleGetVersion)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/api/users/logout", s.handleLogout)
		r.Get("/api/users/me", s.handleGetMe)

		r.Route("/api", func(r chi.Router) {
			// World records
			r.Get("/entities", s.handleListEntities)
			r.Get("/entities/{entityID}", s.handleGetEntity)
			r.Get("/entities/{entityID}/images", s.handleListEntityImages)
			r.Get("/chronicles", s.handleListChronicles)
			r.Get("/chronicles/{chronicleID}", s.handleGetChronicle)
			r.Get("/chronicles/{chronicleID}/annotations", s.handleListAnnotations)

			// Bulk operation lifecycle
			r.Get("/operations", s.handleListOperations)
			r.Get("/operations/{kind}", s.handleGetOperation)
			r.Post("/operations/{kind}/begin", s.handleBeginOperation)
			r.Post("/operations/{kind}/confirm", s.handleConfirmOperation)
			r.Post("/operations/{kind}/cancel", s.handleCancelOperation)
			r.Post("/operations/{kind}/close", s.handleCloseOperation)
			r.Post("/operations/{kind}/minimize", s.handleMinimizeOperation)
			r.Post("/operations/{kind}/expand", s.handleExpandOperation)
			r.Get("/pills", s.handleListPills)

			// Cohesion issues
			r.Get("/cohesion/issues", s.handleListCohesionIssues)
			r.Post("/cohesion/issues/{issueID}/resolve", s.handleResolveCohesionIssue)

			// Admin Job Triggers
			r.Route("/admin", func(r chi.Router) {
				r.Use(s.AdminOnlyMiddleware)

				r.Get("/jobs/status", s.handleGetAdminJobsStatus)
				r.Post("/jobs/run", s.handleRunAdminJob)
				r.Post("/import", s.handleRunImport)
			})
		})
	})

	// WebSocket route
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
