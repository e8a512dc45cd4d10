package authority

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrAuthorityUnavailable covers every way the remote authority can fail to
// answer: connection errors, timeouts, non-200 statuses, and unparseable
// bodies. Callers treat them all the same (the gate fails open).
var ErrAuthorityUnavailable = errors.New("invalidation authority unavailable")

const defaultRequestTimeout = 2 * time.Second

// Client talks to a remote authority server. Safe for concurrent use.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient builds a client for the authority at baseURL. httpClient may be
// nil (http.DefaultClient). timeout bounds each request independently of the
// caller's context; zero applies the 2s default.
func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, errors.New("empty authority base url")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid authority base url: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Client{baseURL: baseURL, http: httpClient, timeout: timeout}, nil
}

// SetPasswordChangedAt synchronously records a stamp and returns the confirmed
// value the authority stored. This runs on the password-change path, not the
// request hot path, so its failures are surfaced rather than swallowed.
func (c *Client) SetPasswordChangedAt(ctx context.Context, userID string, changedAt int64) (int64, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s/password-changed-at?timestamp=%s",
		c.baseURL, url.PathEscape(userID), strconv.FormatInt(changedAt, 10))

	var body struct {
		Timestamp int64 `json:"timestamp"`
	}
	if err := c.post(ctx, endpoint, &body); err != nil {
		return 0, err
	}
	return body.Timestamp, nil
}

// ValidateToken reports whether a token with the given effective timestamp is
// still acceptable for the user. Every failure mode is
// [ErrAuthorityUnavailable]; the caller decides what that means.
func (c *Client) ValidateToken(ctx context.Context, userID string, tokenIssuedAt int64) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/users/%s/validate-token?tokenIssuedAt=%s",
		c.baseURL, url.PathEscape(userID), strconv.FormatInt(tokenIssuedAt, 10))

	var body struct {
		Valid bool `json:"valid"`
	}
	if err := c.post(ctx, endpoint, &body); err != nil {
		return false, err
	}
	return body.Valid, nil
}

func (c *Client) post(ctx context.Context, endpoint string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: status %d", ErrAuthorityUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthorityUnavailable, err)
	}
	return nil
}
