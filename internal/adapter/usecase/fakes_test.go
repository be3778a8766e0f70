package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
	"github.com/juliatong/AI-bee-Meta/internal/core/port"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGateway records calls and returns canned ids. failAt aborts the named
// creation kind with failErr.
type fakeGateway struct {
	mu      sync.Mutex
	created []domain.ResourceKind
	params  map[domain.ResourceKind]port.Params

	failAt  domain.ResourceKind
	failErr error

	uploadErr error
	thumbErr  error

	statusUpdates map[string]domain.CampaignStatus
	updateErr     error

	remote   *port.RemoteCampaign
	fetchErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		params:        map[domain.ResourceKind]port.Params{},
		statusUpdates: map[string]domain.CampaignStatus{},
	}
}

func (g *fakeGateway) Create(_ context.Context, kind domain.ResourceKind, _ string, params port.Params) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failAt == kind && g.failErr != nil {
		return "", g.failErr
	}
	g.created = append(g.created, kind)
	g.params[kind] = params
	return "id_" + string(kind), nil
}

func (g *fakeGateway) UploadAsset(_ context.Context, _, _ string) (string, error) {
	if g.uploadErr != nil {
		return "", g.uploadErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.created = append(g.created, domain.KindAsset)
	return "id_asset", nil
}

func (g *fakeGateway) AssetThumbnail(_ context.Context, _ string) (string, error) {
	if g.thumbErr != nil {
		return "", g.thumbErr
	}
	return "https://cdn.example.com/thumb.jpg", nil
}

func (g *fakeGateway) UpdateStatus(_ context.Context, remoteCampaignID string, status domain.CampaignStatus) error {
	if g.updateErr != nil {
		return g.updateErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusUpdates[remoteCampaignID] = status
	return nil
}

func (g *fakeGateway) FetchCampaign(_ context.Context, remoteCampaignID string) (*port.RemoteCampaign, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	if g.remote != nil {
		return g.remote, nil
	}
	return &port.RemoteCampaign{ID: remoteCampaignID, Status: domain.StatusPaused}, nil
}

// fakeStore is an in-memory port.StateStore.
type fakeStore struct {
	mu        sync.Mutex
	accounts  map[string]domain.AccountConfig
	campaigns map[string]domain.CampaignRecord
	schedules map[string]domain.ScheduledJob
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:  map[string]domain.AccountConfig{},
		campaigns: map[string]domain.CampaignRecord{},
		schedules: map[string]domain.ScheduledJob{},
	}
}

func (s *fakeStore) Account(_ context.Context, id string) (*domain.AccountConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[id]; ok {
		return &acc, nil
	}
	return nil, nil
}

func (s *fakeStore) SaveAccount(_ context.Context, id string, acc domain.AccountConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id] = acc
	return nil
}

func (s *fakeStore) Campaign(_ context.Context, id string) (*domain.CampaignRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.campaigns[id]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *fakeStore) AddCampaign(_ context.Context, rec domain.CampaignRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[rec.InternalID]; ok {
		return &domain.StorageError{Op: "add campaign"}
	}
	s.campaigns[rec.InternalID] = rec
	return nil
}

func (s *fakeStore) SaveCampaign(_ context.Context, rec domain.CampaignRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campaigns[rec.InternalID] = rec
	return nil
}

func (s *fakeStore) Schedule(_ context.Context, jobID string) (*domain.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.schedules[jobID]; ok {
		return &job, nil
	}
	return nil, nil
}

func (s *fakeStore) PendingScheduleForCampaign(_ context.Context, campaignID string) (*domain.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.schedules {
		if job.CampaignID == campaignID && job.Status == domain.JobPending {
			j := job
			return &j, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ScheduleForCampaign(_ context.Context, campaignID string) (*domain.ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *domain.ScheduledJob
	for _, job := range s.schedules {
		if job.CampaignID != campaignID {
			continue
		}
		if found == nil || job.CreatedAt.After(found.CreatedAt) {
			j := job
			found = &j
		}
	}
	return found, nil
}

func (s *fakeStore) SaveSchedule(_ context.Context, job domain.ScheduledJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[job.ID] = job
	return nil
}

// fakeScheduler records scheduled jobs; Cancel succeeds once per job.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []domain.ScheduledJob
	err       error
	cancelled map[string]bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{cancelled: map[string]bool{}}
}

func (f *fakeScheduler) Schedule(_ context.Context, job domain.ScheduledJob) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, job)
	return nil
}

func (f *fakeScheduler) Cancel(_ context.Context, jobID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelled[jobID] {
		return false
	}
	f.cancelled[jobID] = true
	return true
}

func testAccount() domain.AccountConfig {
	return domain.AccountConfig{
		AccountID:  "act_123456789",
		ClientName: "Acme",
		Currency:   "SGD",
		PixelID:    "px_1",
		PageID:     "pg_1",
		Active:     true,
	}
}

func newTestService() (*CampaignService, *fakeGateway, *fakeStore, *fakeScheduler) {
	gw := newFakeGateway()
	store := newFakeStore()
	sched := newFakeScheduler()
	svc := NewCampaignService(gw, store, testLogger())
	svc.AttachScheduler(sched)
	store.accounts["client_a"] = testAccount()
	return svc, gw, store, sched
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}
