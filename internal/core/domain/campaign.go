package domain

import (
	"net/url"
	"slices"
	"strings"
	"time"
)

// validCallToActions is the closed set of call-to-action buttons the
// platform accepts for video ads.
var validCallToActions = []string{
	"SHOP_NOW", "LEARN_MORE", "SIGN_UP", "DOWNLOAD", "WATCH_MORE",
	"APPLY_NOW", "BOOK_TRAVEL", "CONTACT_US", "GET_QUOTE", "SUBSCRIBE",
}

// CampaignSpec is the immutable input of one provisioning run. It is built
// per request and never persisted verbatim.
type CampaignSpec struct {
	InternalID      string
	ClientAccountID string
	Name            string
	// DailyBudget is in minor currency units (cents). Budget lives on the
	// campaign only; ad groups inherit it through campaign budget
	// optimization.
	DailyBudget    int64
	AssetPath      string
	PrimaryText    string
	Headline       string
	Description    string
	CallToAction   string
	DestinationURL string
	URLParameters  string
	Geo            GeoTargeting
	// StartTime, when set and in the future, both arms the local activation
	// schedule and is attached to the ad group as the platform-native start
	// time.
	StartTime *time.Time
}

// Validate checks the spec before any remote call is attempted.
func (s *CampaignSpec) Validate() error {
	switch {
	case s.InternalID == "":
		return &ConfigError{Msg: "missing required field: campaign_id"}
	case s.ClientAccountID == "":
		return &ConfigError{Msg: "missing required field: client_account_id"}
	case s.Name == "":
		return &ConfigError{Msg: "missing required field: name"}
	case s.AssetPath == "":
		return &ConfigError{Msg: "missing required field: video.file_path"}
	case s.PrimaryText == "":
		return &ConfigError{Msg: "missing required field: primary_text"}
	case s.Headline == "":
		return &ConfigError{Msg: "missing required field: headline"}
	case s.DestinationURL == "":
		return &ConfigError{Msg: "missing required field: destination_url"}
	}
	if s.DailyBudget < 100 {
		return &ConfigError{Msg: "daily_budget must be at least 100 minor units"}
	}
	if s.CallToAction != "" && !slices.Contains(validCallToActions, s.CallToAction) {
		return &ConfigError{Msg: "invalid call_to_action: " + s.CallToAction}
	}
	if _, err := url.Parse(s.DestinationURL); err != nil {
		return &ValidationError{Msg: "invalid destination_url: " + err.Error()}
	}
	return nil
}

// CTA returns the call to action, defaulting to SHOP_NOW.
func (s *CampaignSpec) CTA() string {
	if s.CallToAction == "" {
		return "SHOP_NOW"
	}
	return s.CallToAction
}

// LinkURL returns the destination URL with tracking parameters appended,
// using ? or & depending on whether the URL already carries a query string.
func (s *CampaignSpec) LinkURL() string {
	if s.URLParameters == "" {
		return s.DestinationURL
	}
	sep := "?"
	if strings.Contains(s.DestinationURL, "?") {
		sep = "&"
	}
	return s.DestinationURL + sep + s.URLParameters
}

// CampaignRecord is the persisted view of a fully provisioned campaign. It
// is written only after the whole resource chain completed.
type CampaignRecord struct {
	InternalID      string         `json:"internal_id"`
	ClientAccountID string         `json:"client_account_id"`
	AccountID       string         `json:"account_id"`
	Name            string         `json:"name"`
	Status          CampaignStatus `json:"status"`
	DailyBudget     int64          `json:"daily_budget"`
	Remote          RemoteIDs      `json:"meta_ids"`
	CreatedAt       time.Time      `json:"created_at"`
	ActivatedAt     *time.Time     `json:"activated_at,omitempty"`
	LastUpdated     time.Time      `json:"last_updated"`
	LastSynced      *time.Time     `json:"last_synced,omitempty"`
}
