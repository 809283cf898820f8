package qstash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds every outbound QStash request.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 1024

// ErrMessageNotFound is returned by Delete when QStash no longer knows the
// message, typically because it has already been delivered.
var ErrMessageNotFound = errors.New("qstash: message not found")

// APIError is returned for non-2xx responses other than the ones mapped to sentinels.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("qstash: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("qstash: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	// Timeout applies when HTTPClient is nil. Zero means DefaultTimeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the QStash v2 API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. BaseURL and Token are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("qstash: base url is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("qstash: token is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "qstash_client")),
	}, nil
}

type publishResponse struct {
	MessageID string `json:"messageId"`
}

// Publish enqueues payload (JSON-encoded) for delivery to destination no
// earlier than notBefore, and returns the QStash message id.
func (c *Client) Publish(ctx context.Context, destination string, payload any, notBefore time.Time) (string, error) {
	if _, err := url.ParseRequestURI(destination); err != nil {
		return "", fmt.Errorf("qstash: invalid destination %q: %w", destination, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("qstash: failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v2/publish/"+destination,
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("qstash: failed to build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if !notBefore.IsZero() {
		req.Header.Set("Upstash-Not-Before", strconv.FormatInt(notBefore.Unix(), 10))
	}

	respBody, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", &APIError{StatusCode: status, Body: respBody}
	}

	var out publishResponse
	if err := json.Unmarshal([]byte(respBody), &out); err != nil {
		return "", fmt.Errorf("qstash: failed to parse publish response: %w", err)
	}
	if out.MessageID == "" {
		return "", errors.New("qstash: publish response carried no message id")
	}

	c.logger.Debug("message published",
		slog.String("message_id", out.MessageID),
		slog.Int64("not_before", notBefore.Unix()))
	return out.MessageID, nil
}

// Delete cancels a pending message. A 404 yields ErrMessageNotFound.
func (c *Client) Delete(ctx context.Context, messageID string) error {
	if messageID == "" {
		return errors.New("qstash: message id is required")
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodDelete,
		c.baseURL+"/v2/messages/"+url.PathEscape(messageID),
		nil,
	)
	if err != nil {
		return fmt.Errorf("qstash: failed to build delete request: %w", err)
	}

	respBody, status, err := c.do(req)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusNotFound:
		return ErrMessageNotFound
	case status < 200 || status > 299:
		return &APIError{StatusCode: status, Body: respBody}
	}

	c.logger.Debug("message deleted", slog.String("message_id", messageID))
	return nil
}

func (c *Client) do(req *http.Request) (string, int, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("qstash: %s request failed: %w", req.Method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("qstash: failed to read response: %w", err)
	}

	body := string(data)
	if resp.StatusCode > 299 && len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return body, resp.StatusCode, nil
}
