package paas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultAgent = "searchad-bidder"

// Client talks to the PaaS log API. It logs in with an API key and keeps the
// bearer token fresh.
type Client struct {
	BaseURL string
	APIKey  string
	Agent   string

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	once sync.Once
	http *resty.Client
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (c *Client) rest() *resty.Client {
	c.once.Do(func() {
		c.http = resty.New().
			SetBaseURL(strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json")
	})
	return c.http
}

func (c *Client) Login(ctx context.Context) error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("paas base url is empty")
	}
	apiKey := strings.TrimSpace(c.APIKey)
	if apiKey == "" {
		return errors.New("paas api key is empty")
	}

	resp, err := c.rest().R().
		SetContext(ctx).
		SetBody(map[string]any{"api_key": apiKey}).
		Post("/api/v1/auth/login")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("paas login http %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	var lr loginResponse
	if err := json.Unmarshal(resp.Body(), &lr); err != nil {
		return fmt.Errorf("paas login decode: %w", err)
	}
	token := strings.TrimSpace(lr.Token)
	if token == "" {
		return errors.New("paas login returned empty token")
	}
	exp, _ := time.Parse(time.RFC3339, strings.TrimSpace(lr.ExpiresAt))

	c.mu.Lock()
	c.token = token
	c.expiresAt = exp
	c.mu.Unlock()
	return nil
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) EnsureToken(ctx context.Context) error {
	c.mu.RLock()
	tok := c.token
	exp := c.expiresAt
	c.mu.RUnlock()
	if strings.TrimSpace(tok) == "" {
		return c.Login(ctx)
	}
	if !exp.IsZero() && time.Until(exp) < 2*time.Minute {
		return c.Login(ctx)
	}
	return nil
}

type CreateLogRequest struct {
	Agent      string         `json:"agent"`
	Action     string         `json:"action"`
	Level      string         `json:"level"`
	Details    map[string]any `json:"details"`
	SessionKey string         `json:"session_key"`
	Metadata   map[string]any `json:"metadata"`
}

func (c *Client) CreateLog(ctx context.Context, req CreateLogRequest) error {
	if err := c.EnsureToken(ctx); err != nil {
		return err
	}
	if req.Agent == "" {
		req.Agent = c.agent()
	}
	if req.Metadata == nil {
		req.Metadata = map[string]any{}
	}
	resp, err := c.rest().R().
		SetContext(ctx).
		SetAuthToken(c.Token()).
		SetBody(req).
		Post("/api/v1/logs")
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("paas create log http %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}
	return nil
}

func (c *Client) agent() string {
	if v := strings.TrimSpace(c.Agent); v != "" {
		return v
	}
	return DefaultAgent
}
