package domain

import (
	"errors"
	"testing"
	"time"
)

func validSpec() CampaignSpec {
	return CampaignSpec{
		InternalID:      "camp_001",
		ClientAccountID: "client_a",
		Name:            "Summer Sale",
		DailyBudget:     5000,
		AssetPath:       "/tmp/video.mp4",
		PrimaryText:     "Big savings",
		Headline:        "Summer Sale",
		DestinationURL:  "https://shop.example.com/sale",
	}
}

func TestSpecValidate(t *testing.T) {
	spec := validSpec()
	if err := spec.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*CampaignSpec)
	}{
		{"missing id", func(s *CampaignSpec) { s.InternalID = "" }},
		{"missing account", func(s *CampaignSpec) { s.ClientAccountID = "" }},
		{"missing name", func(s *CampaignSpec) { s.Name = "" }},
		{"missing asset", func(s *CampaignSpec) { s.AssetPath = "" }},
		{"missing primary text", func(s *CampaignSpec) { s.PrimaryText = "" }},
		{"missing headline", func(s *CampaignSpec) { s.Headline = "" }},
		{"missing url", func(s *CampaignSpec) { s.DestinationURL = "" }},
		{"budget below minimum", func(s *CampaignSpec) { s.DailyBudget = 99 }},
		{"unknown cta", func(s *CampaignSpec) { s.CallToAction = "CLICK_ME" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := validSpec()
			tc.mutate(&spec)
			err := spec.Validate()
			if err == nil {
				t.Fatal("expected validation failure")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
		})
	}
}

func TestSpecCTADefault(t *testing.T) {
	spec := validSpec()
	if got := spec.CTA(); got != "SHOP_NOW" {
		t.Fatalf("expected SHOP_NOW default, got %s", got)
	}
	spec.CallToAction = "LEARN_MORE"
	if got := spec.CTA(); got != "LEARN_MORE" {
		t.Fatalf("expected LEARN_MORE, got %s", got)
	}
}

func TestSpecLinkURL(t *testing.T) {
	spec := validSpec()
	spec.URLParameters = "utm_source=meta"
	if got := spec.LinkURL(); got != "https://shop.example.com/sale?utm_source=meta" {
		t.Fatalf("unexpected link url %s", got)
	}

	spec.DestinationURL = "https://shop.example.com/sale?ref=1"
	if got := spec.LinkURL(); got != "https://shop.example.com/sale?ref=1&utm_source=meta" {
		t.Fatalf("unexpected link url %s", got)
	}

	spec.URLParameters = ""
	if got := spec.LinkURL(); got != spec.DestinationURL {
		t.Fatalf("unexpected link url %s", got)
	}
}

func TestValidateAccountID(t *testing.T) {
	if err := ValidateAccountID("act_123456789"); err != nil {
		t.Fatalf("valid account id rejected: %v", err)
	}
	for _, id := range []string{"", "123456789", "act_", "act_12ab", "ACT_123"} {
		if err := ValidateAccountID(id); err == nil {
			t.Fatalf("expected rejection of %q", id)
		}
	}
}

func TestParseCampaignStatus(t *testing.T) {
	if got := ParseCampaignStatus("ACTIVE"); got != StatusActive {
		t.Fatalf("expected ACTIVE, got %s", got)
	}
	if got := ParseCampaignStatus("IN_PROCESS"); got != StatusUnknown {
		t.Fatalf("expected UNKNOWN for unrecognised status, got %s", got)
	}
}

func TestStatusUpdatable(t *testing.T) {
	for _, s := range []CampaignStatus{StatusActive, StatusPaused, StatusArchived} {
		if !s.Updatable() {
			t.Fatalf("%s must be updatable", s)
		}
	}
	for _, s := range []CampaignStatus{StatusDeleted, StatusUnknown, CampaignStatus("BOGUS")} {
		if s.Updatable() {
			t.Fatalf("%s must not be updatable", s)
		}
	}
}

func TestJobFinishMonotone(t *testing.T) {
	job := ScheduledJob{ID: "j1", Status: JobPending}
	now := time.Now().UTC()

	if err := job.Finish(JobPending, now, ""); err == nil {
		t.Fatal("PENDING is not a terminal status")
	}
	if err := job.Finish(JobCompleted, now, ""); err != nil {
		t.Fatalf("first terminal transition must succeed: %v", err)
	}
	if job.ExecutedAt == nil || !job.ExecutedAt.Equal(now) {
		t.Fatalf("executed_at not recorded: %v", job.ExecutedAt)
	}
	if err := job.Finish(JobFailed, now, "boom"); err == nil {
		t.Fatal("terminal job must not transition again")
	}
	if job.Status != JobCompleted {
		t.Fatalf("status overwritten to %s", job.Status)
	}
}
