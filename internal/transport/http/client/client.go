package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-push-inbox/internal/domain"
)

// Signer issues delivery tokens for POST /v1/messages.
type Signer interface {
	Sign(sender, scope string) (string, error)
}

// Client talks to a running agent's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
	signer  Signer
	sender  string
}

type Option func(*Client)

// WithSigner attaches a bearer token to deliveries.
func WithSigner(s Signer, sender string) Option {
	return func(c *Client) { c.signer, c.sender = s, sender }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIError is a non-2xx answer from the agent.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agent returned %d: %s", e.Status, e.Message)
}

func (c *Client) List(ctx context.Context) ([]domain.StoredNotification, error) {
	var out []domain.StoredNotification
	return out, c.do(ctx, http.MethodGet, "/v1/notifications", nil, "", &out)
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Unread int `json:"unread"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/notifications/unread-count", nil, "", &out)
	return out.Unread, err
}

func (c *Client) MarkRead(ctx context.Context, id string) ([]domain.StoredNotification, error) {
	var out []domain.StoredNotification
	return out, c.do(ctx, http.MethodPut, "/v1/notifications/"+id, nil, "", &out)
}

func (c *Client) Delete(ctx context.Context, id string) ([]domain.StoredNotification, error) {
	var out []domain.StoredNotification
	return out, c.do(ctx, http.MethodDelete, "/v1/notifications/"+id, nil, "", &out)
}

func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/notifications", nil, "", nil)
}

// Token returns the agent's device token, or ("", false) when it has none.
func (c *Client) Token(ctx context.Context) (string, bool, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/device/token", nil, "", &out); err != nil {
		return "", false, err
	}
	return out.Token, out.Token != "", nil
}

// Send posts a message to the agent's webhook and returns how many listeners
// received it.
func (c *Client) Send(ctx context.Context, req domain.DeliverMessageRequest) (int, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("encode message: %w", err)
	}
	var bearer string
	if c.signer != nil {
		if bearer, err = c.signer.Sign(c.sender, "deliver"); err != nil {
			return 0, fmt.Errorf("sign delivery token: %w", err)
		}
	}
	var out struct {
		Delivered int `json:"delivered"`
	}
	err = c.do(ctx, http.MethodPost, "/v1/messages", body, bearer, &out)
	return out.Delivered, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, bearer string, out interface{}) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var env struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if env.Error == "" {
			env.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: env.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
