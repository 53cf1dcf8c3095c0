package tunerapi

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

	"github.com/muurk/tunerdash/internal/logging"
	"github.com/muurk/tunerdash/internal/version"
)

const (
	// DefaultBaseURL is where the backend listens when run on the same host
	DefaultBaseURL = "http://127.0.0.1:5070"

	// DefaultTimeout bounds a single request. Tune can take several
	// seconds on the device while PSIP data populates.
	DefaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response is kept in messages
	maxErrorBody = 256
)

// Client talks to the tuner backend's HTTP API. Every call makes exactly
// one attempt; pollers retry on their next tick.
type Client struct {
	// BaseURL is the backend root (e.g., "http://192.168.1.20:5070")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a new backend client
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetTransport replaces the round tripper, e.g. with an instrumented one
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.HTTPClient.Transport = rt
}

// Status fetches device connectivity. A 503 carrying a status body is a
// valid "disconnected" answer, not an error.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.do(ctx, "status", http.MethodGet, "api/status", nil, &status, http.StatusServiceUnavailable); err != nil {
		return nil, err
	}
	return &status, nil
}

// Tuners fetches the full tuner list
func (c *Client) Tuners(ctx context.Context) ([]Tuner, error) {
	var tuners []Tuner
	if err := c.do(ctx, "tuners", http.MethodGet, "api/tuners", nil, &tuners); err != nil {
		return nil, err
	}
	return tuners, nil
}

// StartScan starts a channel scan on tuner and returns its scan id
func (c *Client) StartScan(ctx context.Context, tuner int) (string, error) {
	var resp ScanStart
	if err := c.do(ctx, "scan/start", http.MethodPost, "api/scan/start", scanStartRequest{Tuner: tuner}, &resp); err != nil {
		return "", err
	}
	if resp.ScanID == "" {
		return "", &Error{Kind: KindProtocol, Op: "scan/start", Message: "response has no scan_id"}
	}
	return resp.ScanID, nil
}

// ScanStatus fetches the progress of a running scan
func (c *Client) ScanStatus(ctx context.Context, scanID string) (*ScanStatus, error) {
	var status ScanStatus
	path := "api/scan/status/" + url.PathEscape(scanID)
	if err := c.do(ctx, "scan/status", http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Tune tunes tuner to a physical channel and returns the programs found.
// An empty program list is reported as a KindEmpty error. The backend
// rejects bad input with a 400 carrying an empty list, which is reported
// the same way.
func (c *Client) Tune(ctx context.Context, tuner, channel int) ([]Program, error) {
	var resp TuneResult
	err := c.do(ctx, "tune", http.MethodPost, "api/tune", tuneRequest{Tuner: tuner, Channel: channel}, &resp, http.StatusBadRequest)
	if err != nil {
		return nil, err
	}
	if len(resp.Subchannels) == 0 {
		return nil, newEmptyError("tune", "No subchannels found")
	}
	return resp.Subchannels, nil
}

// ProgramInfo fetches the transport stream bitrate for a tuned program
func (c *Client) ProgramInfo(ctx context.Context, tuner, program int) (*ProgramInfo, error) {
	var info ProgramInfo
	if err := c.do(ctx, "program_info", http.MethodPost, "api/program_info", programInfoRequest{Tuner: tuner, Program: program}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ClearLocks force-releases every tuner. The per-tuner results are
// optional; a successful status with no body returns an empty result.
func (c *Client) ClearLocks(ctx context.Context) (*ClearLocksResult, error) {
	var result ClearLocksResult
	if err := c.do(ctx, "clear_locks", http.MethodPost, "api/clear_locks", struct{}{}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// do performs one JSON request. Any 2xx status and any of the extra
// accepted statuses are decoded into out; everything else is a
// KindProtocol error.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any, accept ...int) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/"+path, body)
	if err != nil {
		return newNetworkError(op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.LogHTTPExchange(method, path, 0, time.Since(start))
		return newNetworkError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()
	logging.LogHTTPExchange(method, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return newNetworkError(op, err)
	}

	if !statusAccepted(resp.StatusCode, accept) {
		return newStatusError(op, resp.StatusCode, truncate(strings.TrimSpace(string(data)), maxErrorBody))
	}

	if len(bytes.TrimSpace(data)) == 0 {
		if resp.StatusCode/100 == 2 {
			return nil
		}
		return newStatusError(op, resp.StatusCode, "")
	}

	if err := json.Unmarshal(data, out); err != nil {
		return newDecodeError(op, err)
	}
	return nil
}

func statusAccepted(code int, extra []int) bool {
	if code >= 200 && code < 300 {
		return true
	}
	for _, e := range extra {
		if code == e {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
