// Package api exposes the harness over HTTP: instance lifecycle, per-instance
// conversation operations, bulk client removal, and a few diagnostics
// endpoints. Handlers decode JSON, validate, call the registry, and map the
// error taxonomy onto status codes.
package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"ets/pkg/registry"
	"ets/pkg/utils"
)

// Handler serves the /api/v1 surface for one registry.
type Handler struct {
	reg     *registry.Registry
	journal bool
}

// Option mutates handler configuration.
type Option func(*Handler)

// WithJournalRoutes enables the per-instance journal listing endpoint. Only
// useful when the registry was built with a journal.
func WithJournalRoutes() Option {
	return func(h *Handler) { h.journal = true }
}

// New returns the API handler for the given registry.
func New(reg *registry.Registry, options ...Option) *Handler {
	h := &Handler{reg: reg}
	for _, option := range options {
		option(h)
	}
	return h
}

// Register attaches all API routes to the router under /api/v1.
func (h *Handler) Register(r *mux.Router) {
	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/instance", h.createInstance).Methods(http.MethodPut)
	v1.HandleFunc("/instances", h.listInstances).Methods(http.MethodGet)
	v1.HandleFunc("/instance/{id}", h.getInstance).Methods(http.MethodGet)
	v1.HandleFunc("/instance/{id}", h.deleteInstance).Methods(http.MethodDelete)
	v1.HandleFunc("/clients", h.removeAllClients).Methods(http.MethodDelete)
	v1.HandleFunc("/log", h.getLog).Methods(http.MethodGet)
	if h.journal {
		v1.HandleFunc("/instance/{id}/journal", h.getJournal).Methods(http.MethodGet)
	}

	ops := v1.PathPrefix("/instance/{id}").Subrouter()
	ops.HandleFunc("/archive", h.archive).Methods(http.MethodPost)
	ops.HandleFunc("/availability", h.availability).Methods(http.MethodPost)
	ops.HandleFunc("/clear", h.clear).Methods(http.MethodPost)
	ops.HandleFunc("/delete", h.deleteLocal).Methods(http.MethodPost)
	ops.HandleFunc("/deleteEverywhere", h.deleteEverywhere).Methods(http.MethodPost)
	ops.HandleFunc("/getMessages", h.getMessages).Methods(http.MethodPost)
	ops.HandleFunc("/mute", h.mute).Methods(http.MethodPost)
	ops.HandleFunc("/sendConfirmationDelivered", h.confirmation(false, "delivered")).Methods(http.MethodPost)
	ops.HandleFunc("/sendConfirmationRead", h.confirmation(false, "read")).Methods(http.MethodPost)
	ops.HandleFunc("/sendEphemeralConfirmationDelivered", h.confirmation(true, "delivered")).Methods(http.MethodPost)
	ops.HandleFunc("/sendEphemeralConfirmationRead", h.confirmation(true, "read")).Methods(http.MethodPost)
	ops.HandleFunc("/sendFile", h.sendFile).Methods(http.MethodPost)
	ops.HandleFunc("/sendImage", h.sendImage).Methods(http.MethodPost)
	ops.HandleFunc("/sendLocation", h.sendLocation).Methods(http.MethodPost)
	ops.HandleFunc("/sendPing", h.sendPing).Methods(http.MethodPost)
	ops.HandleFunc("/sendReaction", h.sendReaction).Methods(http.MethodPost)
	ops.HandleFunc("/sendSessionReset", h.sendSessionReset).Methods(http.MethodPost)
	ops.HandleFunc("/sendText", h.sendText).Methods(http.MethodPost)
	ops.HandleFunc("/sendTyping", h.sendTyping).Methods(http.MethodPost)
	ops.HandleFunc("/updateText", h.updateText).Methods(http.MethodPost)
}

// writeError maps registry errors onto status codes: unknown instance or
// target message is 404, everything else is an upstream failure surfaced as
// 500 with the underlying message.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrInstanceNotFound),
		errors.Is(err, registry.ErrMessageNotFound):
		utils.JSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, registry.ErrLoginFailed):
		utils.JSONError(w, http.StatusBadGateway, err.Error())
	default:
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}
