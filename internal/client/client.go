// Package client is a typed HTTP client for the boards API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Prabisha01/de/internal/users"
	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "http://localhost:5000"
	defaultTimeout = 15 * time.Second
	apiPrefix      = "/api/v1"
)

// Config configures a Client. TokenProvider, when set, supplies the bearer token
// whenever no token has been stored by Login or SetToken.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	TokenProvider func() string
}

// Client calls the boards API on behalf of one user. It keeps the bearer token
// returned by Login and sends it on every authenticated request.
type Client struct {
	http          *resty.Client
	tokenProvider func() string

	mu    sync.RWMutex
	token string
}

// Session is the result of a successful login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      users.User `json:"data"`
}

// UserFilter narrows the admin user listing. Empty fields are not sent.
type UserFilter struct {
	Role     string
	Plan     string
	IsBanned *bool
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	URL     string          `json:"url"`
	Data    json.RawMessage `json:"data"`
}

// New constructs a Client.
func New(cfg Config) (*Client, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: httpClient, tokenProvider: cfg.TokenProvider}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = defaultBaseURL
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("address must include host and scheme")
	}
	return strings.TrimRight(parsed.String(), "/"), nil
}

// SetToken stores the bearer token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// Token returns the stored bearer token, falling back to the configured provider.
func (c *Client) Token() string {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == "" && c.tokenProvider != nil {
		return strings.TrimSpace(c.tokenProvider())
	}
	return token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

func (c *Client) authedRequest(ctx context.Context) *resty.Request {
	req := c.request(ctx)
	if token := c.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

// do checks the response status and decodes the envelope. When target is non-nil the
// envelope's data is decoded into it.
func do(operation string, resp *resty.Response, err error, target any) (envelope, error) {
	if err != nil {
		return envelope{}, fmt.Errorf("%s request: %w", operation, err)
	}
	if err := mapHTTPError(resp); err != nil {
		return envelope{}, err
	}
	var payload envelope
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return envelope{}, fmt.Errorf("decode %s response: %w", operation, err)
	}
	if target != nil && len(payload.Data) > 0 {
		if err := json.Unmarshal(payload.Data, target); err != nil {
			return envelope{}, fmt.Errorf("decode %s data: %w", operation, err)
		}
	}
	return payload, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, input users.RegisterInput) (users.User, error) {
	var user users.User
	resp, err := c.request(ctx).SetBody(input).Post(apiPrefix + "/users/register")
	_, err = do("register", resp, err, &user)
	return user, err
}

// Login verifies credentials and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	resp, err := c.request(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		Post(apiPrefix + "/users/login")
	if err != nil {
		return Session{}, fmt.Errorf("login request: %w", err)
	}
	if err := mapHTTPError(resp); err != nil {
		return Session{}, err
	}
	var session Session
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return Session{}, fmt.Errorf("decode login response: %w", err)
	}
	c.SetToken(session.Token)
	return session, nil
}

// Logout clears the session cookie server side and forgets the stored token.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.authedRequest(ctx).Post(apiPrefix + "/users/logout")
	if _, err := do("logout", resp, err, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Me returns the caller's profile.
func (c *Client) Me(ctx context.Context) (users.Profile, error) {
	var profile users.Profile
	resp, err := c.authedRequest(ctx).Get(apiPrefix + "/users/getMe")
	_, err = do("get me", resp, err, &profile)
	return profile, err
}

// Subscription returns the caller's plan summary.
func (c *Client) Subscription(ctx context.Context) (users.Subscription, error) {
	var subscription users.Subscription
	resp, err := c.authedRequest(ctx).Get(apiPrefix + "/users/subscription")
	_, err = do("subscription", resp, err, &subscription)
	return subscription, err
}

// UpdateProfilePicture uploads an image and sets it as the caller's profile picture.
func (c *Client) UpdateProfilePicture(ctx context.Context, filename string, body io.Reader) (users.User, error) {
	var user users.User
	resp, err := c.authedRequest(ctx).
		SetFileReader("profilePicture", filename, body).
		Put(apiPrefix + "/users/updateProfilePicture")
	_, err = do("update profile picture", resp, err, &user)
	return user, err
}

// ListUsers lists accounts. Admin only.
func (c *Client) ListUsers(ctx context.Context, filter UserFilter) ([]users.User, error) {
	req := c.authedRequest(ctx)
	if filter.Role != "" {
		req.SetQueryParam("role", filter.Role)
	}
	if filter.Plan != "" {
		req.SetQueryParam("plan", filter.Plan)
	}
	if filter.IsBanned != nil {
		req.SetQueryParam("isBanned", fmt.Sprint(*filter.IsBanned))
	}
	var list []users.User
	resp, err := req.Get(apiPrefix + "/users/getAllUsers")
	_, err = do("list users", resp, err, &list)
	return list, err
}

// UpdateUser applies a partial update to an account.
func (c *Client) UpdateUser(ctx context.Context, userID string, input users.UpdateInput) (users.User, error) {
	var user users.User
	resp, err := c.authedRequest(ctx).
		SetPathParam("id", userID).
		SetBody(input).
		Put(apiPrefix + "/users/updateUser/{id}")
	_, err = do("update user", resp, err, &user)
	return user, err
}

// DeleteUser removes an account with its boards.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	resp, err := c.authedRequest(ctx).
		SetPathParam("id", userID).
		Delete(apiPrefix + "/users/deleteUser/{id}")
	_, err = do("delete user", resp, err, nil)
	return err
}
