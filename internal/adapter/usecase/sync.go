package usecase

import (
	"context"
	"log/slog"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
	"github.com/juliatong/AI-bee-Meta/internal/core/port"
)

// Status fetches the live remote projection without touching the stored
// record.
func (s *CampaignService) Status(ctx context.Context, campaignID string) (*port.CampaignStatus, error) {
	rec, err := s.campaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	remote, err := s.gw.FetchCampaign(ctx, rec.Remote.CampaignID)
	if err != nil {
		return nil, err
	}
	name := remote.Name
	if name == "" {
		name = rec.Name
	}
	return &port.CampaignStatus{
		CampaignID:       campaignID,
		RemoteCampaignID: rec.Remote.CampaignID,
		Name:             name,
		Status:           remote.Status,
		DailyBudget:      remote.DailyBudget,
		UpdatedTime:      remote.UpdatedTime,
		LastSynced:       s.now().UTC(),
	}, nil
}

// Sync fetches remote state and merges differing fields into the stored
// record. The returned map holds exactly the fields that changed. Two
// concurrent syncs observing the same remote state converge: both write the
// same values, so last-writer-wins is harmless here.
func (s *CampaignService) Sync(ctx context.Context, campaignID string) (map[string]any, error) {
	rec, err := s.campaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	changed, err := s.merge(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.logger.Info("campaign synced",
		slog.String("campaign", campaignID), slog.Int("changed_fields", len(changed)))
	return changed, nil
}

// merge applies the remote projection onto rec and persists it. It returns
// the changed-field set.
func (s *CampaignService) merge(ctx context.Context, rec *domain.CampaignRecord) (map[string]any, error) {
	remote, err := s.gw.FetchCampaign(ctx, rec.Remote.CampaignID)
	if err != nil {
		return nil, err
	}

	changed := map[string]any{}
	if remote.Status != rec.Status {
		rec.Status = remote.Status
		changed["status"] = remote.Status
	}
	if remote.Name != "" && remote.Name != rec.Name {
		rec.Name = remote.Name
		changed["name"] = remote.Name
	}
	if remote.DailyBudget > 0 && remote.DailyBudget != rec.DailyBudget {
		rec.DailyBudget = remote.DailyBudget
		changed["daily_budget"] = remote.DailyBudget
	}

	now := s.now().UTC()
	rec.LastSynced = &now
	rec.LastUpdated = now
	if err := s.store.SaveCampaign(ctx, *rec); err != nil {
		return nil, err
	}
	return changed, nil
}

// Activate flips the campaign to ACTIVE immediately, then syncs the result
// back into the record.
func (s *CampaignService) Activate(ctx context.Context, campaignID string) (*domain.CampaignRecord, error) {
	rec, err := s.campaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := s.activateAndMerge(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("campaign activated", slog.String("campaign", campaignID))
	return rec, nil
}

// RunActivation is the scheduled task body: flip the remote campaign to
// ACTIVE, reconcile the record, persist it. A missing local record is not
// an error: the remote flip still counts and the divergence surfaces on the
// next explicit sync.
func (s *CampaignService) RunActivation(ctx context.Context, campaignID, remoteCampaignID string) error {
	s.logger.Info("executing activation job",
		slog.String("campaign", campaignID), slog.String("remote_campaign", remoteCampaignID))

	rec, err := s.store.Campaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if rec == nil {
		s.logger.Warn("no local record for scheduled campaign, flipping remote only",
			slog.String("campaign", campaignID))
		return s.gw.UpdateStatus(ctx, remoteCampaignID, domain.StatusActive)
	}
	return s.activateAndMerge(ctx, rec)
}

func (s *CampaignService) activateAndMerge(ctx context.Context, rec *domain.CampaignRecord) error {
	if err := s.gw.UpdateStatus(ctx, rec.Remote.CampaignID, domain.StatusActive); err != nil {
		return err
	}
	now := s.now().UTC()
	rec.ActivatedAt = &now
	// merge persists the record, including activated_at
	if _, err := s.merge(ctx, rec); err != nil {
		return err
	}
	return nil
}
