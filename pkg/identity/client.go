package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/targetdesk/pkg/requestid"
)

const (
	loginPath   = "/auth/login"
	profilePath = "/profile/summary"

	maxBodySize = 1 << 20
)

// Client talks to the identity endpoints of the dashboard API.
type Client struct {
	baseURL   string
	client    *http.Client
	userAgent string
}

type Option func(*Client)

// WithHTTPClient sets the client used for requests. The default is http.DefaultClient
// so requests pass through any interceptor installed on it.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidURL)
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    http.DefaultClient,
		userAgent: "targetdesk/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type loginRequest struct {
	NIP      string `json:"nip"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type profileResponse struct {
	Success bool     `json:"success"`
	Data    *Profile `json:"data"`
	Message string   `json:"message"`
}

// Login exchanges staff credentials for a bearer token.
// A response with success=false, or without a token, fails with ErrAuthenticationFailed
// carrying the server message. Transport failures and undecodable bodies fail with ErrUnavailable.
func (c *Client) Login(ctx context.Context, nip, password string) (string, error) {
	payload, err := json.Marshal(loginRequest{NIP: nip, Password: password})
	if err != nil {
		return "", fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out loginResponse
	status, err := c.do(req, &out)
	if err != nil {
		return "", &Error{Kind: ErrUnavailable, Status: status, Message: MsgUnavailable, Err: err}
	}

	if !out.Success || out.Token == "" || !successful(status) {
		return "", &Error{Kind: ErrAuthenticationFailed, Status: status, Message: messageOr(out.Message, MsgLoginFailed)}
	}

	return out.Token, nil
}

// FetchProfile retrieves the profile of the holder of token with a single request.
// Any failure (transport, non-2xx, undecodable body, success=false, missing data)
// is reported as ErrProfileUnavailable with the server message when one was sent.
func (c *Client) FetchProfile(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+profilePath, nil)
	if err != nil {
		return nil, fmt.Errorf("create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var out profileResponse
	status, err := c.do(req, &out)
	if err != nil {
		return nil, &Error{Kind: ErrProfileUnavailable, Status: status, Message: MsgProfileFailed, Err: err}
	}

	if !out.Success || out.Data == nil || !successful(status) {
		return nil, &Error{Kind: ErrProfileUnavailable, Status: status, Message: messageOr(out.Message, MsgProfileFailed)}
	}

	return out.Data, nil
}

// do sends req and decodes the JSON envelope into out whatever the status,
// so error responses still yield the server message. Only transport, read
// and decode failures are returned as errors.
func (c *Client) do(req *http.Request, out any) (int, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	requestid.Stamp(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

func successful(status int) bool {
	return status >= 200 && status < 300
}

func messageOr(msg, fallback string) string {
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return fallback
}
