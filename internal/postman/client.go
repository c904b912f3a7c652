// Package postman is the HTTP client for the remote collection service.
// Every call is a single blocking request with a short timeout and no
// retry: a timeout or non-2xx status is terminal for that call.
package postman

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/recordkit/postsync/internal/config"
	"github.com/recordkit/postsync/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// requestTimeout bounds every remote call.
const requestTimeout = 10 * time.Second

// APIError is a non-2xx response from the service. The body is carried so
// callers can log what the service actually said.
type APIError struct {
	Status int
	Body   string
	Op     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: remote service returned status %d: %s", e.Op, e.Status, e.Body)
}

// Client talks to the collection service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authMgr    AuthManager
}

// ClientParams holds the dependencies for NewClient.
type ClientParams struct {
	fx.In

	Config      *config.Config
	AuthManager AuthManager
}

// NewClient creates a Client with the default timeout.
func NewClient(params ClientParams) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: strings.TrimSuffix(params.Config.Remote.APIURL, "/"),
		authMgr: params.AuthManager,
	}
}

// SetTimeout overrides the HTTP client timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// GetCollection fetches the full remote collection tree.
func (c *Client) GetCollection(ctx context.Context, id string) (*Collection, error) {
	body, err := c.do(ctx, http.MethodGet, "/collections/"+id, nil, "get collection")
	if err != nil {
		return nil, err
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("get collection: malformed response: %w", err)
	}
	return &envelope.Collection, nil
}

// UpdateCollection replaces the remote collection wholesale.
func (c *Client) UpdateCollection(ctx context.Context, id string, col *Collection) error {
	payload, err := json.Marshal(Envelope{Collection: *col})
	if err != nil {
		return fmt.Errorf("update collection: failed to marshal payload: %w", err)
	}

	_, err = c.do(ctx, http.MethodPut, "/collections/"+id, payload, "update collection")
	return err
}

// GetWorkspace fetches workspace metadata, used to validate credentials.
func (c *Client) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	body, err := c.do(ctx, http.MethodGet, "/workspaces/"+id, nil, "get workspace")
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Workspace Workspace `json:"workspace"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("get workspace: malformed response: %w", err)
	}
	return &envelope.Workspace, nil
}

// CreateEnvironment creates a remote environment and returns its id.
func (c *Client) CreateEnvironment(ctx context.Context, env *Environment) (string, error) {
	payload, err := json.Marshal(EnvironmentEnvelope{Environment: *env})
	if err != nil {
		return "", fmt.Errorf("create environment: failed to marshal payload: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/environments", payload, "create environment")
	if err != nil {
		return "", err
	}

	var envelope struct {
		Environment struct {
			ID string `json:"id"`
		} `json:"environment"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("create environment: malformed response: %w", err)
	}
	return envelope.Environment.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, op string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.authMgr.ApplyAuth(req); err != nil {
		return nil, fmt.Errorf("%s: failed to apply authentication: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Remote call failed",
			zap.String("op", op),
			zap.String("method", method),
			zap.Error(err))
		return nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Body: string(body), Op: op}
		logger.Error("Remote service error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, apiErr
	}

	return body, nil
}

func newAuthFromConfig(cfg *config.Config) *APIKeyAuth {
	return NewAPIKeyAuth(cfg.Remote.APIKey)
}

// Module provides the collection service client dependencies
var Module = fx.Options(
	fx.Provide(
		NewClient,
		fx.Annotate(
			newAuthFromConfig,
			fx.As(new(AuthManager)),
		),
	),
)
