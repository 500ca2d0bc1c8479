package searchad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://api.searchad.naver.com"

type Credentials struct {
	APIKey     string
	SecretKey  string
	CustomerID string
}

type Options struct {
	BaseURL     string
	Timeout     time.Duration
	RetryCount  int
	Credentials Credentials
}

// Client is a signed REST client for the search-ad management API.
type Client struct {
	http  *resty.Client
	creds Credentials
	now   func() time.Time
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("searchad API error (%d): %s", e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func NewClient(opts Options) *Client {
	host := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if host == "" {
		host = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := opts.RetryCount
	if retries < 0 {
		retries = 0
	}

	c := &Client{creds: opts.Credentials, now: time.Now}
	c.http = resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if resp == nil {
				return false
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp == nil || resp.StatusCode() != http.StatusTooManyRequests {
				return 0, nil
			}
			if ra := strings.TrimSpace(resp.Header().Get("Retry-After")); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					return time.Duration(secs) * time.Second, nil
				}
			}
			return 2 * time.Second, nil
		})
	// Runs before every attempt, so retries carry a fresh timestamp.
	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		return c.sign(r)
	})
	return c
}

func (c *Client) sign(r *resty.Request) error {
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	path, err := requestPath(r.URL)
	if err != nil {
		return err
	}
	r.SetHeader("X-Timestamp", ts)
	r.SetHeader("X-API-KEY", c.creds.APIKey)
	r.SetHeader("X-Customer", c.creds.CustomerID)
	r.SetHeader("X-Signature", Signature(c.creds.SecretKey, ts, r.Method, path))
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body any, out any) error {
	req := c.http.R().SetContext(ctx).SetHeader("Accept", "application/json")
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json; charset=UTF-8")
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		return &APIError{Status: resp.StatusCode(), Body: strings.TrimSpace(string(resp.Body()))}
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
