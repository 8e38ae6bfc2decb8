package targets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrymomot/targetdesk/pkg/identity"
	"github.com/dmitrymomot/targetdesk/pkg/requestid"
)

const maxBodySize = 4 << 20

// Client reads and assigns marketing targets. It expects an *http.Client that
// already authorizes requests, such as session.Manager.HTTPClient.
type Client struct {
	baseURL string
	client  *http.Client
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, client *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), client: client}, nil
}

// PeriodOf returns the target period of a profile.
func PeriodOf(p *identity.Profile) (Period, error) {
	month, year := p.Period()
	if month < 1 || month > 12 || year <= 0 {
		return Period{}, ErrNoPeriod
	}
	return Period{Month: month, Year: year}, nil
}

type envelope[T any] struct {
	Success bool                       `json:"success"`
	Data    T                          `json:"data"`
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

// Assignments lists staff targets for a period, optionally filtered by name or NIP.
func (c *Client) Assignments(ctx context.Context, period Period, search string) ([]Staff, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(period.Month))
	q.Set("year", strconv.Itoa(period.Year))
	q.Set("search", search)

	var out envelope[[]Staff]
	if err := c.do(ctx, http.MethodGet, "/bm/monitoring/assignment?"+q.Encode(), nil, &out, MsgFetchFailed); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// BranchTargets returns the branch allocation of the manager's current period.
func (c *Client) BranchTargets(ctx context.Context) (*Branch, error) {
	var out envelope[*Branch]
	if err := c.do(ctx, http.MethodGet, "/bm/branch-targets", nil, &out, MsgFetchFailed); err != nil {
		return nil, err
	}
	if out.Data == nil {
		return nil, &Error{Kind: ErrRequestFailed, Message: MsgFetchFailed}
	}
	return out.Data, nil
}

// Assign sets the product targets of one staff member. Zero or missing
// amounts are rejected locally with ErrZeroAmount before any request.
func (c *Client) Assign(ctx context.Context, nip string, a Assignment) error {
	if strings.TrimSpace(nip) == "" {
		return ErrNoStaff
	}
	if len(a.Targets) == 0 {
		return &Error{Kind: ErrZeroAmount, Message: MsgZeroAmount}
	}
	for _, t := range a.Targets {
		if t.Amount <= 0 {
			return &Error{Kind: ErrZeroAmount, Message: MsgZeroAmount}
		}
	}

	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assignment: %w", err)
	}

	var out envelope[json.RawMessage]
	return c.do(ctx, http.MethodPost, "/bm/monitoring/assignment/"+url.PathEscape(nip), body, &out, MsgSaveFailed)
}

// failure is implemented by envelope so do can build errors without knowing T.
type failure interface {
	failed() (msg string, zeroAmount bool, ok bool)
}

func (e *envelope[T]) failed() (string, bool, bool) {
	if _, zero := e.Errors["amount"]; zero {
		return MsgZeroAmount, true, true
	}
	if e.Error != "" {
		return e.Error, false, true
	}
	if !e.Success {
		return e.Message, false, true
	}
	return "", false, false
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out failure, fallback string) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestid.Stamp(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Kind: ErrRequestFailed, Message: fallback, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &Error{Kind: ErrRequestFailed, Status: resp.StatusCode, Message: fallback, Err: err}
	}

	decodeErr := json.Unmarshal(data, out)
	okStatus := resp.StatusCode >= 200 && resp.StatusCode < 300

	if decodeErr == nil {
		if msg, zero, failed := out.failed(); failed || !okStatus {
			kind := ErrRequestFailed
			if zero {
				kind = ErrZeroAmount
			}
			if msg == "" {
				msg = fallback
			}
			return &Error{Kind: kind, Status: resp.StatusCode, Message: msg}
		}
		return nil
	}

	return &Error{Kind: ErrRequestFailed, Status: resp.StatusCode, Message: fallback, Err: decodeErr}
}
