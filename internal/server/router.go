// Package server exposes the dashboard data over a local HTTP API.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires h onto its routes.
func NewRouter(h *Handlers) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/token", h.Token).Methods(http.MethodPost)
	api.HandleFunc("/auth/status", h.Status).Methods(http.MethodGet)
	api.HandleFunc("/graphql", h.GraphQL).Methods(http.MethodPost)
	api.HandleFunc("/repos/{owner}/{repo}/pulls", h.ListPulls).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/pulls/pages", h.ListPages).Methods(http.MethodGet)
	api.HandleFunc("/repos/{owner}/{repo}/pulls/{number:[0-9]+}", h.GetPull).Methods(http.MethodGet)
	api.HandleFunc("/viewer", h.Viewer).Methods(http.MethodGet)
	return r
}
