package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wabisaby/cloudplatform-dashboard/internal/handler"
	"github.com/wabisaby/cloudplatform-dashboard/internal/service"
	"github.com/wabisaby/cloudplatform-dashboard/internal/session"
)

// NewRouter creates a new Chi router with all routes configured
func NewRouter(gate *session.Gate, registry *service.SiteRegistry, staticDir string) http.Handler {
	sessionHandler := handler.NewSessionHandler()
	siteHandler := handler.NewSiteHandler(registry)

	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(session.Middleware(gate))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Status endpoint
	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		handler.SendSuccess(w, map[string]string{"message": "CloudPlatform dashboard is running"})
	})

	// Session (routing gate)
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", sessionHandler.GetSession)
		r.Post("/login", sessionHandler.Login)
		r.Post("/logout", sessionHandler.Logout)
		r.Post("/navigate", sessionHandler.Navigate)
	})

	// Container catalog for the "host new site" form
	r.Get("/api/containers", handler.ListContainers)
	r.Get("/api/containers/build-command", handler.BuildCommand)

	r.Route("/api/sites", func(r chi.Router) {
		r.Use(handler.RequireDashboard)
		r.Get("/", siteHandler.ListSites)
		r.Post("/", siteHandler.CreateSite)
		r.Get("/events/stream", siteHandler.StreamEvents)
		r.Get("/{id}", siteHandler.GetSite)
		r.Delete("/{id}", siteHandler.DeleteSite)
		r.Post("/{id}/{action}", siteHandler.HandleSiteAction)
	})

	if staticDir != "" {
		r.Get("/*", handler.ServeStatic(staticDir).ServeHTTP)
	}

	return r
}
