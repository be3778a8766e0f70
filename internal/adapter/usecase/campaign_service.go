// Package usecase implements the application's business operations:
// provisioning, reconciliation, activation and scheduling.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
	"github.com/juliatong/AI-bee-Meta/internal/core/port"
)

// CampaignService implements port.CampaignUseCase. It drives the creation
// pipeline against the gateway, keeps records in the state store and hands
// time-triggered activation to the scheduler.
type CampaignService struct {
	gw     port.AdPlatformGateway
	store  port.StateStore
	sched  port.Scheduler
	logger *slog.Logger

	now func() time.Time
}

// NewCampaignService wires the service. The scheduler is attached
// separately because it needs the service as its task body.
func NewCampaignService(gw port.AdPlatformGateway, store port.StateStore, logger *slog.Logger) *CampaignService {
	return &CampaignService{
		gw:     gw,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// AttachScheduler hands the service its scheduler reference. Called once by
// the composition root after both objects exist.
func (s *CampaignService) AttachScheduler(sched port.Scheduler) {
	s.sched = sched
}

// CreateAccount stores a new client account configuration.
func (s *CampaignService) CreateAccount(ctx context.Context, id string, acc domain.AccountConfig) error {
	if id == "" {
		return &domain.ValidationError{Msg: "missing account id"}
	}
	if err := domain.ValidateAccountID(acc.AccountID); err != nil {
		return err
	}
	existing, err := s.store.Account(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		return port.ErrAccountExists
	}
	if err := s.store.SaveAccount(ctx, id, acc); err != nil {
		return err
	}
	s.logger.Info("account created", slog.String("account", id))
	return nil
}

// Account returns a stored client account configuration.
func (s *CampaignService) Account(ctx context.Context, id string) (*domain.AccountConfig, error) {
	acc, err := s.store.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, port.ErrAccountNotFound
	}
	return acc, nil
}

// campaign loads a record or reports ErrCampaignNotFound.
func (s *CampaignService) campaign(ctx context.Context, id string) (*domain.CampaignRecord, error) {
	rec, err := s.store.Campaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, port.ErrCampaignNotFound
	}
	return rec, nil
}
