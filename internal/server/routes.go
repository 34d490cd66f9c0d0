package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Alert admission
	mux.HandleFunc("/webhook/alert", s.app.WebhookHandler.AlertHandler)
	mux.HandleFunc("/test/alert", s.app.WebhookHandler.TestAlertHandler)

	// Job inspection
	mux.HandleFunc("/status/", s.app.JobHandler.StatusHandler)
	mux.HandleFunc("/jobs", s.app.JobHandler.ListJobsHandler)

	// System
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/version", s.app.APIHandler.VersionHandler)

	// Everything else is a JSON 404
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.app.APIHandler.NotFoundHandler(w, r)
	})

	return mux
}
