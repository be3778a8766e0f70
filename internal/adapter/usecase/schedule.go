package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
	"github.com/juliatong/AI-bee-Meta/internal/core/port"
)

// newJobID builds a readable job id: activate_<campaign>_<8 hex chars>.
func newJobID(campaignID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("activate_%s_%s", campaignID, suffix)
}

// ScheduleActivation arms a durable one-shot activation job for the
// campaign. The scheduler rejects instants not strictly in the future.
func (s *CampaignService) ScheduleActivation(ctx context.Context, campaignID string, activateAt time.Time) (*domain.ScheduledJob, error) {
	rec, err := s.campaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return s.scheduleJob(ctx, rec, activateAt)
}

func (s *CampaignService) scheduleJob(ctx context.Context, rec *domain.CampaignRecord, activateAt time.Time) (*domain.ScheduledJob, error) {
	job := domain.ScheduledJob{
		ID:               newJobID(rec.InternalID),
		CampaignID:       rec.InternalID,
		RemoteCampaignID: rec.Remote.CampaignID,
		ActivateAt:       activateAt,
		Status:           domain.JobPending,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.sched.Schedule(ctx, job); err != nil {
		return nil, err
	}
	// bookkeeping mirror in the record store; second leg of the documented
	// non-atomic dual write
	if err := s.store.SaveSchedule(ctx, job); err != nil {
		s.logger.Error("failed to mirror schedule entry",
			slog.String("job", job.ID), slog.Any("error", err))
	}
	s.logger.Info("campaign scheduled for activation",
		slog.String("campaign", rec.InternalID),
		slog.String("job", job.ID),
		slog.Time("activate_at", activateAt))
	return &job, nil
}

// CancelActivation cancels the campaign's pending activation job. It
// reports false when no pending job exists or the job already started.
func (s *CampaignService) CancelActivation(ctx context.Context, campaignID string) (string, bool, error) {
	pending, err := s.store.PendingScheduleForCampaign(ctx, campaignID)
	if err != nil {
		return "", false, err
	}
	if pending == nil {
		return "", false, port.ErrScheduleNotFound
	}
	if !s.sched.Cancel(ctx, pending.ID) {
		return pending.ID, false, nil
	}
	now := s.now().UTC()
	if err := pending.Finish(domain.JobCancelled, now, ""); err == nil {
		if err := s.store.SaveSchedule(ctx, *pending); err != nil {
			s.logger.Error("failed to mirror cancellation",
				slog.String("job", pending.ID), slog.Any("error", err))
		}
	}
	s.logger.Info("schedule cancelled",
		slog.String("campaign", campaignID), slog.String("job", pending.ID))
	return pending.ID, true, nil
}

// ActivationStatus returns the bookkeeping entry of the campaign's most
// recent activation job.
func (s *CampaignService) ActivationStatus(ctx context.Context, campaignID string) (*domain.ScheduledJob, error) {
	job, err := s.store.ScheduleForCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, port.ErrScheduleNotFound
	}
	return job, nil
}
