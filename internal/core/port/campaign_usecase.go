package port

import (
	"context"
	"errors"
	"time"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
)

// Sentinel errors of the use case contract. Inbound adapters map them to
// their protocol's not-found and conflict responses.
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountExists    = errors.New("account already exists")
	ErrScheduleNotFound = errors.New("no schedule found for campaign")
)

// CampaignUseCase is the primary inbound port. The HTTP adapter talks to
// the application exclusively through it.
type CampaignUseCase interface {
	// Provision runs the five-step creation pipeline and persists a
	// CampaignRecord on full success. A future spec.StartTime additionally
	// arms an activation schedule. On mid-pipeline failure the returned
	// error is a *domain.PipelineError carrying the partial chain.
	Provision(ctx context.Context, spec domain.CampaignSpec) (*ProvisionResult, error)

	// Status fetches the live remote projection of a campaign without
	// touching the stored record.
	Status(ctx context.Context, campaignID string) (*CampaignStatus, error)

	// Sync fetches remote state, applies differing fields to the stored
	// record and returns the changed-field set.
	Sync(ctx context.Context, campaignID string) (map[string]any, error)

	// Activate flips the campaign to ACTIVE immediately, then syncs and
	// persists the result.
	Activate(ctx context.Context, campaignID string) (*domain.CampaignRecord, error)

	// ScheduleActivation arms a durable one-shot activation job for a
	// future instant. Naive instants are interpreted in domain.ActivationZone.
	ScheduleActivation(ctx context.Context, campaignID string, activateAt time.Time) (*domain.ScheduledJob, error)

	// CancelActivation cancels the campaign's pending job. It reports
	// false when no pending job exists or the job already started.
	CancelActivation(ctx context.Context, campaignID string) (string, bool, error)

	// ActivationStatus returns the bookkeeping entry of the campaign's most
	// recent activation job.
	ActivationStatus(ctx context.Context, campaignID string) (*domain.ScheduledJob, error)

	CreateAccount(ctx context.Context, id string, acc domain.AccountConfig) error
	Account(ctx context.Context, id string) (*domain.AccountConfig, error)
}

// ProvisionResult reports a completed provisioning run.
type ProvisionResult struct {
	Record    domain.CampaignRecord
	Scheduled *domain.ScheduledJob
}

// CampaignStatus is the live view returned by Status.
type CampaignStatus struct {
	CampaignID       string
	RemoteCampaignID string
	Name             string
	Status           domain.CampaignStatus
	DailyBudget      int64
	UpdatedTime      time.Time
	LastSynced       time.Time
}

// Scheduler is the activation scheduler as seen by the use case layer. The
// concrete scheduler owns timers, workers and the durable job table; it is
// constructed once in the composition root with an explicit Start/Stop
// lifecycle.
type Scheduler interface {
	// Schedule persists job as PENDING and arms its timer. It fails with
	// *domain.SchedulingError when job.ActivateAt is not strictly in the
	// future, leaving the job table untouched.
	Schedule(ctx context.Context, job domain.ScheduledJob) error
	// Cancel removes a not-yet-started job. Cancellation is cooperative: a
	// running task is never interrupted and Cancel then reports false.
	Cancel(ctx context.Context, jobID string) bool
}
