package domain

import (
	"strings"
	"unicode"
)

// AccountConfig is a client ad account known to the service. BeneficiaryID
// is only required when campaigns for this account target a regulated
// market.
type AccountConfig struct {
	AccountID     string `json:"account_id"`
	ClientName    string `json:"client_name"`
	Currency      string `json:"currency"`
	PixelID       string `json:"pixel_id"`
	PageID        string `json:"page_id"`
	CatalogID     string `json:"catalog_id,omitempty"`
	Domain        string `json:"domain,omitempty"`
	BeneficiaryID string `json:"beneficiary_id,omitempty"`
	Active        bool   `json:"active"`
}

// ValidateAccountID checks the platform account id format: act_<digits>.
func ValidateAccountID(accountID string) error {
	numeric, ok := strings.CutPrefix(accountID, "act_")
	if !ok || numeric == "" {
		return &ValidationError{Msg: "invalid account id format: " + accountID + " (must be act_<numeric_id>)"}
	}
	for _, r := range numeric {
		if !unicode.IsDigit(r) {
			return &ValidationError{Msg: "invalid account id format: " + accountID + " (must be act_<numeric_id>)"}
		}
	}
	return nil
}
