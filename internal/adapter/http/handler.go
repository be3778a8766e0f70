package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"log/slog"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
	"github.com/juliatong/AI-bee-Meta/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for HTTP.
// It holds the campaign use case to execute business logic and a logger for
// structured logging. Routes are registered on a chi.Router for convenient
// method handling.
type Handler struct {
	svc    port.CampaignUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc port.CampaignUseCase, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", h.handleCreateAccount)
		r.Get("/accounts/{id}", h.handleGetAccount)

		r.Post("/campaigns", h.handleProvision)
		r.Route("/campaigns/{id}", func(r chi.Router) {
			r.Get("/", h.handleCampaignStatus)
			r.Post("/sync", h.handleSync)
			r.Post("/activate", h.handleActivate)
			r.Post("/schedule", h.handleSchedule)
			r.Delete("/schedule", h.handleCancelSchedule)
			r.Get("/schedule", h.handleScheduleStatus)
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// writeJSON encodes v with the given status code. Encoding failures are
// logged; the status line has already been sent at that point.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps a use case error to an HTTP response. Input and
// configuration problems become 400, missing resources 404, conflicts 409.
// A pipeline abort is reported as 500 together with the ids of the remote
// objects that were created before the failing step, so an operator can
// clean them up.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var pipeErr *domain.PipelineError
	if errors.As(err, &pipeErr) {
		h.logger.Error("provisioning pipeline failed", slog.Any("error", pipeErr))
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":           pipeErr.Error(),
			"failed_step":     string(pipeErr.Step),
			"objects_created": pipeErr.Chain,
		})
		return
	}

	var (
		validationErr *domain.ValidationError
		configErr     *domain.ConfigError
		schedErr      *domain.SchedulingError
		remoteErr     *domain.RemoteError
	)
	switch {
	case errors.Is(err, port.ErrCampaignNotFound),
		errors.Is(err, port.ErrAccountNotFound),
		errors.Is(err, port.ErrScheduleNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, port.ErrAccountExists):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &validationErr), errors.As(err, &configErr), errors.As(err, &schedErr):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &remoteErr):
		h.logger.Error("platform rejected request", slog.Any("error", err))
		h.writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
