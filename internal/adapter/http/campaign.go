package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
)

// provisionReq is the request body for creating a full campaign structure.
type provisionReq struct {
	CampaignID      string `json:"campaign_id"`
	ClientAccountID string `json:"client_account_id"`
	Name            string `json:"name"`
	DailyBudget     int64  `json:"daily_budget"`
	Video           struct {
		FilePath string `json:"file_path"`
	} `json:"video"`
	PrimaryText    string   `json:"primary_text"`
	Headline       string   `json:"headline"`
	Description    string   `json:"description"`
	CallToAction   string   `json:"call_to_action"`
	DestinationURL string   `json:"destination_url"`
	URLParameters  string   `json:"url_parameters"`
	Countries      []string `json:"countries"`
	StartTime      string   `json:"start_time"`
}

// parseActivationTime accepts either an RFC3339 timestamp or a naive
// "2006-01-02T15:04:05" one; naive instants are interpreted in the fixed
// activation zone (UTC+8).
func parseActivationTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, domain.ActivationZone)
}

// handleProvision runs the five-step creation pipeline. On success it
// returns the persisted record plus the auto-armed schedule, if any. A
// mid-pipeline failure produces HTTP 500 carrying the ids created before the
// failing step.
func (h *Handler) handleProvision(w http.ResponseWriter, r *http.Request) {
	var req provisionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	spec := domain.CampaignSpec{
		InternalID:      req.CampaignID,
		ClientAccountID: req.ClientAccountID,
		Name:            req.Name,
		DailyBudget:     req.DailyBudget,
		AssetPath:       req.Video.FilePath,
		PrimaryText:     req.PrimaryText,
		Headline:        req.Headline,
		Description:     req.Description,
		CallToAction:    req.CallToAction,
		DestinationURL:  req.DestinationURL,
		URLParameters:   req.URLParameters,
		Geo:             domain.GeoTargeting{Countries: req.Countries},
	}
	if req.StartTime != "" {
		t, err := parseActivationTime(req.StartTime)
		if err != nil {
			http.Error(w, "invalid start_time", http.StatusBadRequest)
			return
		}
		spec.StartTime = &t
	}

	result, err := h.svc.Provision(r.Context(), spec)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := map[string]any{"campaign": result.Record}
	if result.Scheduled != nil {
		resp["schedule"] = result.Scheduled
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// handleCampaignStatus returns the live remote view of a campaign without
// persisting anything.
func (h *Handler) handleCampaignStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	status, err := h.svc.Status(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

// handleSync reconciles the stored record with remote state and returns the
// fields that changed.
func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	changed, err := h.svc.Sync(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"campaign_id":    id,
		"changed_fields": changed,
	})
}

// handleActivate flips the campaign to ACTIVE immediately.
func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.svc.Activate(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}
