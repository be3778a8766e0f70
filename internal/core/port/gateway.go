package port

import (
	"context"
	"time"

	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
)

// Params carries the request parameters of one resource-creation call.
// Nested maps and slices are JSON-encoded by the adapter before hitting the
// wire, matching what the platform expects for complex fields.
type Params map[string]any

// RemoteCampaign is the fixed field projection returned by FetchCampaign.
type RemoteCampaign struct {
	ID          string
	Name        string
	Status      domain.CampaignStatus
	DailyBudget int64
	UpdatedTime time.Time
}

// AdPlatformGateway is the outbound port to the ad platform. Mutating calls
// carry no idempotency key; invoking one twice creates two remote objects.
//
// Failures are reported as *domain.RemoteError when the platform rejected
// the request and *domain.TransportError on network or HTTP failure.
type AdPlatformGateway interface {
	// Create creates one remote object of the given kind and returns its id.
	Create(ctx context.Context, kind domain.ResourceKind, accountID string, params Params) (string, error)
	// UploadAsset uploads the media file at path and returns the asset id.
	// It is the only long-running call and the only one with in-process
	// retry: up to 3 attempts on TransportError, never on RemoteError.
	UploadAsset(ctx context.Context, accountID, path string) (string, error)
	// AssetThumbnail returns the thumbnail reference of an uploaded asset.
	AssetThumbnail(ctx context.Context, assetID string) (string, error)
	// UpdateStatus patches the remote campaign status. Statuses outside
	// {ACTIVE, PAUSED, ARCHIVED} are rejected before any call is issued.
	UpdateStatus(ctx context.Context, remoteCampaignID string, status domain.CampaignStatus) error
	// FetchCampaign reads the remote campaign projection.
	FetchCampaign(ctx context.Context, remoteCampaignID string) (*RemoteCampaign, error)
}
