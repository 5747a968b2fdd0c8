// Package client is the Go counterpart of the browser session code: a
// cookie-aware HTTP client for the auth endpoints, a session store that
// tracks whether the current user is known, and a route guard that turns
// session state into navigation decisions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	auth "github.com/skilllink/learnex-auth"
)

// DefaultTimeout bounds every request. A server that does not answer in
// time counts as a failed call, never as a hung client.
const DefaultTimeout = 10 * time.Second

var (
	ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth)
	ErrUserExists         = goerrors.New("the user already exists", goerrors.CategoryConflict)
	ErrNotAuthorized      = goerrors.New("not authorized", goerrors.CategoryAuth)
	ErrBadRequest         = goerrors.New("the server rejected the request", goerrors.CategoryBadInput)
	ErrUnavailable        = goerrors.New("the server could not be reached", goerrors.CategoryOperation)
)

// Client talks to the /api/auth endpoints. The cookie jar holds the
// session cookie; callers never see or store the token.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client. The jar is preserved
// unless the replacement brings its own.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create cookie jar")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// RegisterPayload is the account creation request body.
type RegisterPayload struct {
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginPayload struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// envelope is the server's response shape for all four endpoints.
type envelope struct {
	User    *auth.PublicUser `json:"user"`
	Message string           `json:"message"`
}

// Register creates an account. On success the session cookie lands in
// the jar, so the caller is already logged in.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (auth.PublicUser, error) {
	return c.userCall(ctx, http.MethodPost, "/api/auth/register", payload, http.StatusCreated)
}

// Login exchanges credentials for a session cookie.
func (c *Client) Login(ctx context.Context, login, password string) (auth.PublicUser, error) {
	user, err := c.userCall(ctx, http.MethodPost, "/api/auth/login", loginPayload{
		Login:    login,
		Password: password,
	}, http.StatusOK)
	if goerrors.Is(err, ErrNotAuthorized) {
		return auth.PublicUser{}, ErrInvalidCredentials
	}
	return user, err
}

// Verify asks the server who the session cookie belongs to.
func (c *Client) Verify(ctx context.Context) (auth.PublicUser, error) {
	return c.userCall(ctx, http.MethodGet, "/api/auth/verify", nil, http.StatusOK)
}

// Logout invalidates the session cookie server-side and drops it from
// the jar.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode, "")
	}

	return nil
}

func (c *Client) userCall(ctx context.Context, method, path string, body any, wantStatus int) (auth.PublicUser, error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return auth.PublicUser{}, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && resp.StatusCode == wantStatus {
		return auth.PublicUser{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to decode response")
	}

	if resp.StatusCode != wantStatus {
		return auth.PublicUser{}, statusError(resp.StatusCode, env.Message)
	}

	if env.User == nil {
		return auth.PublicUser{}, goerrors.New("response is missing the user", goerrors.CategoryInternal)
	}

	return *env.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode request")
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build request")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, ErrUnavailable.Message)
	}

	return resp, nil
}

func statusError(code int, message string) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrNotAuthorized
	case http.StatusBadRequest:
		if strings.EqualFold(message, "The user already exists") {
			return ErrUserExists
		}
		return ErrBadRequest
	default:
		return goerrors.New(
			fmt.Sprintf("unexpected status %d", code),
			goerrors.CategoryInternal,
		)
	}
}
