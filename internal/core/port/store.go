package port

import (
	"context"
	"time"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
)

// StateStore is the durable keyed record store holding the three logical
// collections: accounts, campaigns and schedules. Each save replaces the
// whole value for one key atomically; there is no cross-key transaction and
// concurrent writers to the same key apply last-writer-wins.
//
// Lookups return (nil, nil) when the key is absent. Failures are reported
// as *domain.StorageError.
type StateStore interface {
	Account(ctx context.Context, id string) (*domain.AccountConfig, error)
	SaveAccount(ctx context.Context, id string, acc domain.AccountConfig) error

	Campaign(ctx context.Context, id string) (*domain.CampaignRecord, error)
	// AddCampaign persists a new record and fails if the id already exists.
	AddCampaign(ctx context.Context, rec domain.CampaignRecord) error
	SaveCampaign(ctx context.Context, rec domain.CampaignRecord) error

	Schedule(ctx context.Context, jobID string) (*domain.ScheduledJob, error)
	// PendingScheduleForCampaign returns the pending job bookkeeping entry
	// for a campaign, or nil when none is pending.
	PendingScheduleForCampaign(ctx context.Context, campaignID string) (*domain.ScheduledJob, error)
	// ScheduleForCampaign returns the campaign's most recently created job
	// entry regardless of status, or nil when the campaign was never
	// scheduled.
	ScheduleForCampaign(ctx context.Context, campaignID string) (*domain.ScheduledJob, error)
	SaveSchedule(ctx context.Context, job domain.ScheduledJob) error
}

// JobRepository is the scheduler's own durable job table, independent of
// the StateStore. Rows are keyed by job id and survive process restarts.
type JobRepository interface {
	Insert(ctx context.Context, job domain.ScheduledJob) error
	Job(ctx context.Context, jobID string) (*domain.ScheduledJob, error)
	// Pending returns every job still awaiting execution, oldest first.
	Pending(ctx context.Context) ([]domain.ScheduledJob, error)
	// Finish moves a PENDING row to the given terminal status. It reports
	// false when the row was absent or already terminal, which makes the
	// terminal transition happen at most once even with racing writers.
	Finish(ctx context.Context, jobID string, status domain.JobStatus, at time.Time, errMsg string) (bool, error)
}
