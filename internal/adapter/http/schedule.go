package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// scheduleReq is the request body for arming an activation job.
type scheduleReq struct {
	ActivateAt string `json:"activate_at"`
}

// handleSchedule arms a durable one-shot activation job for the campaign.
// Instants not strictly in the future result in HTTP 400 and nothing is
// persisted.
func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.ActivateAt == "" {
		http.Error(w, "missing activate_at", http.StatusBadRequest)
		return
	}
	activateAt, err := parseActivationTime(req.ActivateAt)
	if err != nil {
		http.Error(w, "invalid activate_at", http.StatusBadRequest)
		return
	}

	job, err := h.svc.ScheduleActivation(r.Context(), id, activateAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, job)
}

// handleCancelSchedule cancels the campaign's pending activation job. A job
// that already started or finished is reported as a conflict.
func (h *Handler) handleCancelSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	jobID, cancelled, err := h.svc.CancelActivation(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !cancelled {
		h.writeJSON(w, http.StatusConflict, map[string]any{
			"job_id":    jobID,
			"cancelled": false,
			"error":     "job already started or finished",
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"job_id":    jobID,
		"cancelled": true,
	})
}

// handleScheduleStatus returns the campaign's most recent activation job.
func (h *Handler) handleScheduleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.svc.ActivationStatus(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, job)
}
