// Package companion provides client functionality for the native companion
// helper process
package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"download-router/pkg/models"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is where the companion helper listens locally
	DefaultBaseURL = "http://127.0.0.1:8721"

	// statusCacheTTL bounds how often the installed-status probe runs
	statusCacheTTL = 5 * time.Minute
)

// ErrUnavailable is returned by every capability when the companion helper
// cannot be reached
var ErrUnavailable = errors.New("companion app unavailable")

// MoveResult represents the result of a move operation
type MoveResult struct {
	Moved       bool   `json:"moved"`
	Destination string `json:"destination,omitempty"`
}

// Client defines the capability set provided by the companion helper.
// Dialog-style calls return an empty path when the user cancels.
type Client interface {
	CheckInstalled(ctx context.Context, force bool) (models.CompanionAppStatus, error)
	PickFolder(ctx context.Context, startPath string) (string, error)
	VerifyFolder(ctx context.Context, path string) (bool, error)
	MoveFile(ctx context.Context, src, dst string) (MoveResult, error)
	ShowSaveDialog(ctx context.Context, suggestedName, startDir string) (string, error)
	OpenFolder(ctx context.Context, path string) error
}

// apiResponse is the generic envelope the companion helper answers with
type apiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  *apiError       `json:"error,omitempty"`
}

// apiError represents an error response from the helper
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error implements the error interface for apiError
func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (code: %s)", e.Message, e.Code)
	}
	return e.Message
}

// HTTPClient talks to the companion helper over its local HTTP endpoint
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	// Installed-status cache. The busy flag is a re-entrancy guard, not a
	// lock around the probe itself: concurrent callers get the last cached
	// value instead of piling up probes.
	mu              sync.Mutex
	status          models.CompanionAppStatus
	checkInProgress bool
}

// New creates a new companion client
func New(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Dialog calls block on the user; moves can be large files
			Timeout: 5 * time.Minute,
		},
	}
}

// CheckInstalled probes the helper, honoring the 5 minute cache unless
// force is set
func (c *HTTPClient) CheckInstalled(ctx context.Context, force bool) (models.CompanionAppStatus, error) {
	c.mu.Lock()
	if c.checkInProgress {
		status := c.status
		c.mu.Unlock()
		return status, nil
	}
	if !force && !c.status.LastChecked.IsZero() && time.Since(c.status.LastChecked) < statusCacheTTL {
		status := c.status
		c.mu.Unlock()
		return status, nil
	}
	c.checkInProgress = true
	c.mu.Unlock()

	status := models.CompanionAppStatus{LastChecked: time.Now()}

	var result struct {
		Version  string `json:"version"`
		Platform string `json:"platform"`
	}
	err := c.call(ctx, "/status", nil, &result)
	if err != nil {
		status.Installed = false
		status.Error = err.Error()
	} else {
		status.Installed = true
		status.Version = result.Version
		status.Platform = result.Platform
	}

	c.mu.Lock()
	c.status = status
	c.checkInProgress = false
	c.mu.Unlock()

	return status, nil
}

// PickFolder asks the helper to show a native folder picker. An empty path
// means the user cancelled.
func (c *HTTPClient) PickFolder(ctx context.Context, startPath string) (string, error) {
	req := map[string]string{"start_path": startPath}
	var result struct {
		Path string `json:"path"`
	}
	if err := c.call(ctx, "/pick-folder", req, &result); err != nil {
		return "", err
	}
	return result.Path, nil
}

// VerifyFolder asks the helper whether a folder exists and is writable
func (c *HTTPClient) VerifyFolder(ctx context.Context, path string) (bool, error) {
	req := map[string]string{"path": path}
	var result struct {
		Exists bool `json:"exists"`
	}
	if err := c.call(ctx, "/verify-folder", req, &result); err != nil {
		return false, err
	}
	return result.Exists, nil
}

// MoveFile asks the helper to move a file to an absolute destination
func (c *HTTPClient) MoveFile(ctx context.Context, src, dst string) (MoveResult, error) {
	req := map[string]string{"source": src, "destination": dst}
	var result MoveResult
	if err := c.call(ctx, "/move-file", req, &result); err != nil {
		return MoveResult{}, err
	}
	return result, nil
}

// ShowSaveDialog asks the helper to show a native save dialog. An empty path
// means the user cancelled.
func (c *HTTPClient) ShowSaveDialog(ctx context.Context, suggestedName, startDir string) (string, error) {
	req := map[string]string{"suggested_name": suggestedName, "start_dir": startDir}
	var result struct {
		Path string `json:"path"`
	}
	if err := c.call(ctx, "/save-dialog", req, &result); err != nil {
		return "", err
	}
	return result.Path, nil
}

// OpenFolder asks the helper to reveal a folder in the OS file manager
func (c *HTTPClient) OpenFolder(ctx context.Context, path string) error {
	req := map[string]string{"path": path}
	return c.call(ctx, "/open-folder", req, nil)
}

// call performs one request/response round trip against the helper
func (c *HTTPClient) call(ctx context.Context, endpoint string, payload, out any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("companion request failed with status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Status != "success" {
		if apiResp.Error != nil {
			return apiResp.Error
		}
		return fmt.Errorf("companion returned status: %s", apiResp.Status)
	}

	if out != nil && len(apiResp.Data) > 0 {
		if err := json.Unmarshal(apiResp.Data, out); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}

	return nil
}
