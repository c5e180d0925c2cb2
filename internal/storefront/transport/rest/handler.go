// Package rest exposes the store's getters and actions to the UI over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	sferrors "github.com/abgdnv/storefront/internal/storefront/errors"
	"github.com/abgdnv/storefront/internal/storefront/store"
	"github.com/abgdnv/storefront/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sony/gobreaker/v2"
)

// maxPayloadBytes caps an action payload.
const maxPayloadBytes = 1 << 20

// Store is the part of the state store served over HTTP.
type Store interface {
	Get(name string) (any, error)
	Dispatch(ctx context.Context, name string, payload json.RawMessage) error
	Snapshot() store.State
}

var _ Store = (*store.Store)(nil)

type Handler struct {
	store  Store
	logger *slog.Logger
}

// NewHandler creates a new Handler serving s.
func NewHandler(s Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  s,
		logger: logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the storefront.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Get("/getters/{name}", h.Get)
		r.Post("/actions/{name}", h.Dispatch)
	})
	r.Get("/healthz", h.HealthCheck)
}

// State returns the whole state.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	web.RespondJSON(w, mLogger, http.StatusOK, h.store.Snapshot())
}

// Get evaluates a getter and returns its value as {"value": ...}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	name := chi.URLParam(r, "name")

	mLogger.DebugContext(r.Context(), "Received getter request", "getter", name)
	value, err := h.store.Get(name)
	if err != nil {
		h.respondStoreError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{"value": value})
}

// Dispatch runs an action with the request body as payload and returns the resulting state.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	name := chi.URLParam(r, "name")

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error reading request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	mLogger.DebugContext(r.Context(), "Received action request", "action", name, "bytes", len(payload))
	if err := h.store.Dispatch(r.Context(), name, payload); err != nil {
		h.respondStoreError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Action completed", "action", name)
	web.RespondJSON(w, mLogger, http.StatusOK, h.store.Snapshot())
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error) {
	name := chi.URLParam(r, "name")
	switch {
	case errors.Is(err, sferrors.ErrUnknownGetter), errors.Is(err, sferrors.ErrUnknownAction):
		mLogger.WarnContext(r.Context(), "Unknown store operation", "name", name)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Unknown operation %s", name))
	case errors.Is(err, sferrors.ErrInvalidPayload):
		mLogger.WarnContext(r.Context(), "Invalid payload", "name", name, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		mLogger.WarnContext(r.Context(), "Remote API circuit breaker is open", "name", name)
		web.RespondError(w, mLogger, http.StatusServiceUnavailable, "Remote API is unavailable")
	case errors.Is(err, sferrors.ErrNetwork), errors.Is(err, sferrors.ErrMalformedResponse):
		mLogger.ErrorContext(r.Context(), "Remote API call failed", "name", name, "error", err)
		web.RespondError(w, mLogger, http.StatusBadGateway, fmt.Sprintf("Remote API call failed for %s", name))
	default:
		mLogger.ErrorContext(r.Context(), "Store operation failed", "name", name, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to run %s", name))
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	if id, ok := web.GetRequestID(r.Context()); ok {
		reqID = id
	}
	return h.logger.With("request_id", reqID)
}
