package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
)

// createAccountReq is the request body for registering a client account.
type createAccountReq struct {
	ClientAccountID string `json:"client_account_id"`
	AccountID       string `json:"account_id"`
	ClientName      string `json:"client_name"`
	Currency        string `json:"currency"`
	PixelID         string `json:"pixel_id"`
	PageID          string `json:"page_id"`
	CatalogID       string `json:"catalog_id"`
	Domain          string `json:"domain"`
	BeneficiaryID   string `json:"beneficiary_id"`
}

// handleCreateAccount registers a client ad account configuration. Duplicate
// ids result in HTTP 409, malformed ids in HTTP 400.
func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	acc := domain.AccountConfig{
		AccountID:     req.AccountID,
		ClientName:    req.ClientName,
		Currency:      req.Currency,
		PixelID:       req.PixelID,
		PageID:        req.PageID,
		CatalogID:     req.CatalogID,
		Domain:        req.Domain,
		BeneficiaryID: req.BeneficiaryID,
		Active:        true,
	}
	if err := h.svc.CreateAccount(r.Context(), req.ClientAccountID, acc); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{
		"client_account_id": req.ClientAccountID,
		"account_id":        req.AccountID,
	})
}

// handleGetAccount returns a stored client account configuration.
func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	acc, err := h.svc.Account(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, acc)
}
