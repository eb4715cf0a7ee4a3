package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/clientdir/internal/metrics"
)

// NewRouter wires every endpoint of the directory API.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestContext, h.instrument)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			h.log.WithError(err).Debug("write health response")
		}
	}).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	r.HandleFunc("/auth/login", h.Login).Methods("POST")
	r.HandleFunc("/auth/register", h.Register).Methods("POST")

	r.HandleFunc("/cep/{cep}", h.LookupCEP).Methods("GET")
	r.HandleFunc("/cep/{cep}/coordinates", h.ResolveCEP).Methods("GET")

	authed := r.NewRoute().Subrouter()
	authed.Use(h.requireSession)
	authed.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	authed.HandleFunc("/auth/me", h.Me).Methods("GET")
	authed.HandleFunc("/clients", h.ListClients).Methods("GET")
	authed.HandleFunc("/clients", h.CreateClient).Methods("POST")
	authed.HandleFunc("/clients/region", h.Region).Methods("GET")
	authed.HandleFunc("/clients/{id:[0-9]+}", h.GetClient).Methods("GET")
	authed.HandleFunc("/clients/{id:[0-9]+}", h.UpdateClient).Methods("PUT")
	authed.HandleFunc("/clients/{id:[0-9]+}", h.DeleteClient).Methods("DELETE")

	return r
}
