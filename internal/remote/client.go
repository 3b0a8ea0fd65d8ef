package remote

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"todo-sync/internal/config"
	"todo-sync/internal/errors"
)

// TokenType is the Authorization scheme Frappe expects for API key pairs
const TokenType = "token"

// maxErrorBody caps how much of a failed response body ends up in an error
const maxErrorBody = 512

// Client defines the remote task store operations used by the sync engine.
// Every call is a single round trip with no retry.
type Client interface {
	List(ctx context.Context) ([]Record, error)
	Create(ctx context.Context, text string, done bool) (string, error)
	Update(ctx context.Context, remoteID string, text string, done bool) error
	Delete(ctx context.Context, remoteID string) error
}

// HTTPClient implements Client over HTTP
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a client for the collection at cfg.BaseURL. When an API
// key is configured every request carries "Authorization: token key:secret".
func NewClient(cfg config.RemoteConfig, logger *slog.Logger) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, errors.NewInvalidInputError("remote.base_url", cfg.BaseURL, "must be an absolute http(s) URL")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.APIKey != "" {
		token := &oauth2.Token{
			AccessToken: cfg.APIKey + ":" + cfg.APISecret,
			TokenType:   TokenType,
		}
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   transport,
		}
	}

	return &HTTPClient{
		baseURL: base,
		http:    &http.Client{Transport: transport, Timeout: cfg.Timeout},
		logger:  logger.With("component", "remote"),
	}, nil
}

// List fetches every record in the collection
func (c *HTTPClient) List(ctx context.Context) ([]Record, error) {
	fields, err := json.Marshal(ListFields)
	if err != nil {
		return nil, errors.NewRemoteError("list", 0, err)
	}
	query := url.Values{}
	query.Set("fields", string(fields))
	query.Set("limit_page_length", "0")

	var resp ListResponse
	if err := c.do(ctx, "list", http.MethodGet, c.baseURL+"?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Create stores a new record and returns the name the remote assigned to it
func (c *HTTPClient) Create(ctx context.Context, text string, done bool) (string, error) {
	body := WriteRequest{Description: text, Status: StatusFor(done)}

	var resp RecordResponse
	if err := c.do(ctx, "create", http.MethodPost, c.baseURL, body, &resp); err != nil {
		return "", err
	}
	if resp.Data.Name == "" {
		return "", errors.NewRemoteError("create", 0, stderrors.New("response did not include a record name"))
	}
	return resp.Data.Name, nil
}

// Update overwrites the description and status of an existing record
func (c *HTTPClient) Update(ctx context.Context, remoteID string, text string, done bool) error {
	body := WriteRequest{Description: text, Status: StatusFor(done)}
	return c.do(ctx, "update", http.MethodPut, c.recordURL(remoteID), body, nil)
}

// Delete removes a record
func (c *HTTPClient) Delete(ctx context.Context, remoteID string) error {
	return c.do(ctx, "delete", http.MethodDelete, c.recordURL(remoteID), nil, nil)
}

func (c *HTTPClient) recordURL(remoteID string) string {
	return c.baseURL + "/" + url.PathEscape(remoteID)
}

func (c *HTTPClient) do(ctx context.Context, operation, method, endpoint string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.NewRemoteError(operation, 0, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.NewRemoteError(operation, 0, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return errors.NewTimeoutError("remote "+operation, err)
		}
		return errors.NewRemoteError(operation, 0, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("remote request completed",
		"operation", operation,
		"method", method,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.NewRemoteError(operation, resp.StatusCode,
			fmt.Errorf("%s %s: %s", method, req.URL.Path, strings.TrimSpace(string(snippet))))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewRemoteError(operation, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
