package meta

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/juliatong/AI-bee-Meta/internal/config/configs"
	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
	"github.com/juliatong/AI-bee-Meta/internal/core/port"
)

func testClient(baseURL string) *Client {
	cfg := configs.Meta{
		AccessToken:     "tok",
		APIVersion:      "v22.0",
		BaseURL:         baseURL,
		Timeout:         5 * time.Second,
		UploadTimeout:   5 * time.Second,
		UploadAttempts:  3,
		RetryBackoff:    2 * time.Second,
		RetryBackoffCap: 10 * time.Second,
	}
	c := NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.sleep = func(time.Duration) {}
	return c
}

func TestCreateCampaign(t *testing.T) {
	var gotPath, gotObjective, gotCategories string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotObjective = r.PostFormValue("objective")
		gotCategories = r.PostFormValue("special_ad_categories")
		require.Equal(t, "tok", r.PostFormValue("access_token"))
		json.NewEncoder(w).Encode(map[string]string{"id": "camp_remote_1"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	id, err := c.Create(context.Background(), domain.KindCampaign, "act_1", port.Params{
		"name":                  "Summer Sale",
		"objective":             "OUTCOME_SALES",
		"special_ad_categories": []string{},
		"daily_budget":          int64(5000),
	})
	require.NoError(t, err)
	require.Equal(t, "camp_remote_1", id)
	require.Equal(t, "/v22.0/act_1/campaigns", gotPath)
	require.Equal(t, "OUTCOME_SALES", gotObjective)
	require.Equal(t, "[]", gotCategories, "nested values must be JSON-encoded")
}

func TestCreateUnknownKind(t *testing.T) {
	c := testClient("http://unused")
	_, err := c.Create(context.Background(), domain.KindAsset, "act_1", port.Params{})
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

// TestRemoteErrorDecoding checks a Graph error object becomes a typed
// rejection carrying code, type and message.
func TestRemoteErrorDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "Invalid parameter",
				"type":    "OAuthException",
				"code":    100,
			},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Create(context.Background(), domain.KindCampaign, "act_1", port.Params{"name": "x"})
	var remoteErr *domain.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.Equal(t, 100, remoteErr.Code)
	require.Equal(t, "OAuthException", remoteErr.Type)
	require.Equal(t, "Invalid parameter", remoteErr.Message)
}

func TestNon2xxWithoutErrorObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"status":"bad gateway"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchCampaign(context.Background(), "c1")
	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func assetFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))
	return path
}

// TestUploadRetriesTransportErrors checks the retry budget and the
// exponential backoff sequence.
func TestUploadRetriesTransportErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream unavailable"))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "vid_1"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	var backoffs []time.Duration
	c.sleep = func(d time.Duration) { backoffs = append(backoffs, d) }

	id, err := c.UploadAsset(context.Background(), "act_1", assetFile(t))
	require.NoError(t, err)
	require.Equal(t, "vid_1", id)
	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, backoffs)
}

func TestUploadExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("down"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.UploadAsset(context.Background(), "act_1", assetFile(t))
	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, int32(3), calls.Load())
}

// TestUploadDoesNotRetryPlatformRejections: a business rejection fails
// immediately.
func TestUploadDoesNotRetryPlatformRejections(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "unsupported format", "type": "GraphMethodException", "code": 352},
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.UploadAsset(context.Background(), "act_1", assetFile(t))
	var remoteErr *domain.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.Equal(t, int32(1), calls.Load())
}

func TestUploadMissingFile(t *testing.T) {
	c := testClient("http://unused")
	_, err := c.UploadAsset(context.Background(), "act_1", "/nonexistent/video.mp4")
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestUpdateStatusValidation(t *testing.T) {
	c := testClient("http://unused")
	err := c.UpdateStatus(context.Background(), "c1", domain.StatusDeleted)
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestUpdateStatus(t *testing.T) {
	var gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotStatus = r.PostFormValue("status")
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	require.NoError(t, c.UpdateStatus(context.Background(), "c1", domain.StatusActive))
	require.Equal(t, "ACTIVE", gotStatus)
}

func TestFetchCampaign(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "id,name,status,daily_budget,lifetime_budget,updated_time", r.URL.Query().Get("fields"))
		json.NewEncoder(w).Encode(map[string]any{
			"id":           "c1",
			"name":         "Summer Sale",
			"status":       "ACTIVE",
			"daily_budget": "7500",
			"updated_time": "2026-03-01T10:15:00+0800",
		})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	rc, err := c.FetchCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, "Summer Sale", rc.Name)
	require.Equal(t, domain.StatusActive, rc.Status)
	require.Equal(t, int64(7500), rc.DailyBudget, "decimal string budget must be parsed")
	require.Equal(t, 2026, rc.UpdatedTime.Year())
}

func TestFetchCampaignUnknownStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "c1", "status": "IN_PROCESS"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	rc, err := c.FetchCampaign(context.Background(), "c1")
	require.NoError(t, err)
	require.Equal(t, domain.StatusUnknown, rc.Status)
}

func TestAssetThumbnail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "picture", r.URL.Query().Get("fields"))
		json.NewEncoder(w).Encode(map[string]string{"picture": "https://cdn.example.com/t.jpg"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	pic, err := c.AssetThumbnail(context.Background(), "vid_1")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/t.jpg", pic)
}

func TestAssetThumbnailMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "vid_1"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.AssetThumbnail(context.Background(), "vid_1")
	var remoteErr *domain.RemoteError
	require.ErrorAs(t, err, &remoteErr)
}
