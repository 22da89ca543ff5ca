// internal/service/xilnex/client.go
package xilnex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crm-service/internal/domain/customer"
	xerrors "crm-service/internal/pkg/errors"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL    = "https://api.xilnex.com"
	DefaultTimeout    = 30 * time.Second
	DefaultBatchSize  = 5
	DefaultBatchPause = time.Second

	createClientPath = "/logic/v2/clients"
	clientPath       = "/clients/"

	defaultRetryWaitMax = 5 * time.Second
)

// ErrNotConfigured is returned by direct operations when the integration is off
// or any credential is missing.
var ErrNotConfigured = xerrors.Tag(xerrors.ErrUnavailable, "xilnex integration is not enabled or configured")

type Config struct {
	Enabled       bool
	BaseURL       string
	AppID         string
	AppToken      string
	Auth          string
	Timeout       time.Duration
	RetryAttempts int
	BatchSize     int
	BatchPause    time.Duration
}

// Client owns the contract with the Xilnex retail platform. It is built once
// per process and is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	outlets OutletNamer
	logger  *zap.Logger

	// pause waits between batches; replaced in tests.
	pause func(ctx context.Context, d time.Duration) error
}

func NewClient(cfg Config, outlets OutletNamer, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	// negative disables the pause between batches
	switch {
	case cfg.BatchPause == 0:
		cfg.BatchPause = DefaultBatchPause
	case cfg.BatchPause < 0:
		cfg.BatchPause = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryAttempts
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.Logger = nil

	// Upstream rejections are answers, not transient faults: only transport
	// errors are retried.
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		return false, nil
	}

	return &Client{
		cfg:     cfg,
		http:    retryClient.StandardClient(),
		outlets: outlets,
		logger:  logger,
		pause:   sleepContext,
	}
}

// Enabled reports whether the feature flag is on and all three credentials are set.
func (c *Client) Enabled() bool {
	return c.cfg.Enabled && c.cfg.AppID != "" && c.cfg.AppToken != "" && c.cfg.Auth != ""
}

// MissingCredentials lists the unset credential variables, for startup warnings.
func (c *Client) MissingCredentials() []string {
	var missing []string
	if c.cfg.AppID == "" {
		missing = append(missing, "XILNEX_APPID")
	}
	if c.cfg.AppToken == "" {
		missing = append(missing, "XILNEX_APPTOKEN")
	}
	if c.cfg.Auth == "" {
		missing = append(missing, "XILNEX_AUTH")
	}
	return missing
}

// CreateClient registers a new client upstream. Upstream rejections come back
// as a failed Result; the error is reserved for ErrNotConfigured.
func (c *Client) CreateClient(ctx context.Context, contact *customer.Customer) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	payload := c.Transform(ctx, contact)
	res := c.do(ctx, http.MethodPost, createClientPath, payload)
	if res.Success {
		res.ClientID = extractClientID(res.Data)
	}
	return res, nil
}

// UpdateClient pushes the contact onto an existing external record.
func (c *Client) UpdateClient(ctx context.Context, externalID string, contact *customer.Customer) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	payload := c.Transform(ctx, contact)
	res := c.do(ctx, http.MethodPut, clientPath+url.PathEscape(externalID), payload)
	if res.Success {
		res.ClientID = externalID
	}
	return res, nil
}

func (c *Client) GetClient(ctx context.Context, externalID string) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	return c.do(ctx, http.MethodGet, clientPath+url.PathEscape(externalID), nil), nil
}

func (c *Client) DeleteClient(ctx context.Context, externalID string) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	return c.do(ctx, http.MethodDelete, clientPath+url.PathEscape(externalID), nil), nil
}

// do performs one call and folds every outcome into a Result.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) *Result {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return failure(fmt.Sprintf("encode request: %v", err), 0, nil)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return failure(err.Error(), 0, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("appid", c.cfg.AppID)
	req.Header.Set("token", c.cfg.AppToken)
	req.Header.Set("auth", c.cfg.Auth)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("xilnex request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return failure(err.Error(), 0, nil)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Sprintf("read response: %v", err), resp.StatusCode, nil)
	}

	c.logger.Debug("xilnex response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure(upstreamMessage(raw, resp.StatusCode), resp.StatusCode, raw)
	}

	return &Result{Success: true, Data: rawJSON(raw)}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
