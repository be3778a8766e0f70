// Package meta implements the ad platform gateway against the Meta
// Marketing (Graph) API.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/juliatong/AI-bee-Meta/internal/config/configs"
	"github.com/juliatong/AI-bee-Meta/internal/core/domain"
	"github.com/juliatong/AI-bee-Meta/internal/core/port"
)

// updatedTimeLayout is the timestamp format the Graph API uses in field
// projections, e.g. 2024-03-01T10:15:00+0800.
const updatedTimeLayout = "2006-01-02T15:04:05-0700"

// Client implements port.AdPlatformGateway over plain HTTP. Creation calls
// are form-encoded POSTs with nested parameters JSON-encoded the way the
// Graph API expects; the asset upload is a multipart POST.
type Client struct {
	cfg    configs.Meta
	http   *http.Client
	upload *http.Client
	logger *slog.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewClient builds a gateway from configuration. The upload client carries
// its own, much longer timeout.
func NewClient(cfg configs.Meta, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		upload: &http.Client{Timeout: cfg.UploadTimeout},
		logger: logger,
		sleep:  time.Sleep,
	}
}

// endpoint paths by resource kind, relative to the account node.
var createEdges = map[domain.ResourceKind]string{
	domain.KindCreative: "adcreatives",
	domain.KindCampaign: "campaigns",
	domain.KindAdGroup:  "adsets",
	domain.KindAd:       "ads",
}

func (c *Client) node(parts ...string) string {
	return c.cfg.BaseURL + "/" + c.cfg.APIVersion + "/" + strings.Join(parts, "/")
}

// Create creates one remote object and returns its id.
func (c *Client) Create(ctx context.Context, kind domain.ResourceKind, accountID string, params port.Params) (string, error) {
	edge, ok := createEdges[kind]
	if !ok {
		return "", &domain.ValidationError{Msg: "cannot create resource of kind " + string(kind)}
	}
	form, err := encodeParams(params)
	if err != nil {
		return "", err
	}
	form.Set("access_token", c.cfg.AccessToken)

	data, err := c.postForm(ctx, c.node(accountID, edge), form)
	if err != nil {
		return "", err
	}
	id, err := extractID(data)
	if err != nil {
		return "", err
	}
	c.logger.Info("remote object created", slog.String("kind", string(kind)), slog.String("id", id))
	return id, nil
}

// UploadAsset uploads the media file at path. It retries transport
// failures up to the configured budget with exponential backoff; platform
// rejections are never retried.
func (c *Client) UploadAsset(ctx context.Context, accountID, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", &domain.ValidationError{Msg: "asset file not found: " + path}
	}

	backoff := c.cfg.RetryBackoff
	var lastErr error
	for attempt := 1; attempt <= c.cfg.UploadAttempts; attempt++ {
		id, err := c.uploadOnce(ctx, accountID, path)
		if err == nil {
			c.logger.Info("asset uploaded", slog.String("id", id), slog.Int("attempt", attempt))
			return id, nil
		}
		var te *domain.TransportError
		if !errors.As(err, &te) {
			return "", err
		}
		lastErr = err
		if attempt == c.cfg.UploadAttempts {
			break
		}
		c.logger.Warn("asset upload failed, retrying",
			slog.Int("attempt", attempt), slog.Any("error", err))
		select {
		case <-ctx.Done():
			return "", &domain.TransportError{Op: "upload asset", Err: ctx.Err()}
		default:
		}
		c.sleep(backoff)
		backoff *= 2
		if backoff > c.cfg.RetryBackoffCap {
			backoff = c.cfg.RetryBackoffCap
		}
	}
	return "", lastErr
}

func (c *Client) uploadOnce(ctx context.Context, accountID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &domain.ValidationError{Msg: "asset file not found: " + path}
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("source", filepath.Base(path))
		if err == nil {
			if _, err = io.Copy(part, f); err == nil {
				err = mw.Close()
			}
		}
		pw.CloseWithError(err)
	}()

	u := c.node(accountID, "advideos") + "?access_token=" + url.QueryEscape(c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		return "", &domain.TransportError{Op: "upload asset", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.upload.Do(req)
	if err != nil {
		return "", &domain.TransportError{Op: "upload asset", Err: err}
	}
	data, err := decodeResponse(resp)
	if err != nil {
		return "", err
	}
	return extractID(data)
}

// AssetThumbnail fetches the thumbnail reference of an uploaded asset.
func (c *Client) AssetThumbnail(ctx context.Context, assetID string) (string, error) {
	data, err := c.get(ctx, c.node(assetID), url.Values{"fields": {"picture"}})
	if err != nil {
		return "", err
	}
	pic, _ := data["picture"].(string)
	if pic == "" {
		return "", &domain.RemoteError{Code: 0, Type: "GraphMethodException", Message: "no thumbnail in response for asset " + assetID}
	}
	return pic, nil
}

// UpdateStatus patches the remote campaign status.
func (c *Client) UpdateStatus(ctx context.Context, remoteCampaignID string, status domain.CampaignStatus) error {
	if !status.Updatable() {
		return &domain.ValidationError{Msg: "invalid status " + string(status) + ": must be ACTIVE, PAUSED or ARCHIVED"}
	}
	form := url.Values{
		"status":       {string(status)},
		"access_token": {c.cfg.AccessToken},
	}
	c.logger.Info("updating campaign status",
		slog.String("campaign", remoteCampaignID), slog.String("status", string(status)))
	_, err := c.postForm(ctx, c.node(remoteCampaignID), form)
	return err
}

// FetchCampaign reads the fixed campaign projection.
func (c *Client) FetchCampaign(ctx context.Context, remoteCampaignID string) (*port.RemoteCampaign, error) {
	data, err := c.get(ctx, c.node(remoteCampaignID), url.Values{
		"fields": {"id,name,status,daily_budget,lifetime_budget,updated_time"},
	})
	if err != nil {
		return nil, err
	}

	rc := &port.RemoteCampaign{ID: remoteCampaignID}
	if v, ok := data["id"].(string); ok {
		rc.ID = v
	}
	rc.Name, _ = data["name"].(string)
	if v, ok := data["status"].(string); ok {
		rc.Status = domain.ParseCampaignStatus(v)
	} else {
		rc.Status = domain.StatusUnknown
	}
	// the Graph API serialises budgets as decimal strings
	if v, ok := data["daily_budget"].(string); ok {
		rc.DailyBudget, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := data["updated_time"].(string); ok {
		if t, err := time.Parse(updatedTimeLayout, v); err == nil {
			rc.UpdatedTime = t
		}
	}
	return rc, nil
}

func (c *Client) postForm(ctx context.Context, u string, form url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &domain.TransportError{Op: "post " + u, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "post " + u, Err: err}
	}
	return decodeResponse(resp)
}

func (c *Client) get(ctx context.Context, u string, q url.Values) (map[string]any, error) {
	q.Set("access_token", c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &domain.TransportError{Op: "get " + u, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "get " + u, Err: err}
	}
	return decodeResponse(resp)
}

// decodeResponse parses a Graph API response. A body carrying an error
// object is a platform rejection regardless of HTTP status; a non-2xx
// status without one is treated as a transport failure.
func decodeResponse(resp *http.Response) (map[string]any, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: "read response", Err: err}
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, &domain.TransportError{
			Op:  "decode response",
			Err: fmt.Errorf("http %d: invalid JSON: %w", resp.StatusCode, err),
		}
	}

	if raw, ok := data["error"].(map[string]any); ok {
		re := &domain.RemoteError{Message: "unknown error"}
		if v, ok := raw["message"].(string); ok {
			re.Message = v
		}
		if v, ok := raw["type"].(string); ok {
			re.Type = v
		}
		if v, ok := raw["code"].(float64); ok {
			re.Code = int(v)
		}
		return nil, re
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.TransportError{
			Op:  "http request",
			Err: fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return data, nil
}

// encodeParams flattens creation parameters into form values, JSON-encoding
// nested objects and lists.
func encodeParams(params port.Params) (url.Values, error) {
	form := url.Values{}
	for key, value := range params {
		switch v := value.(type) {
		case string:
			form.Set(key, v)
		case int:
			form.Set(key, strconv.Itoa(v))
		case int64:
			form.Set(key, strconv.FormatInt(v, 10))
		case bool:
			form.Set(key, strconv.FormatBool(v))
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, &domain.ValidationError{Msg: "unencodable parameter " + key}
			}
			form.Set(key, string(encoded))
		}
	}
	return form, nil
}

func extractID(data map[string]any) (string, error) {
	id, _ := data["id"].(string)
	if id == "" {
		return "", &domain.RemoteError{Code: 0, Type: "GraphMethodException", Message: "no id in response"}
	}
	return id, nil
}
