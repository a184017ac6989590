// Package apiclient talks to the Smart Kanban HTTP API on behalf of the
// terminal board.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"smartkanban/internal/auth"
	"smartkanban/internal/model"

	"github.com/charmbracelet/log"
)

// ErrUnauthorized matches every 401 answer, including *Error values with
// Status 401.
var ErrUnauthorized = errors.New("unauthorized")

// Error is a non-2xx answer carrying the server's {error} message.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar, if nil, is
// set to a fresh cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client is safe for concurrent use.
type Client struct {
	baseURL string
	mode    auth.Mode
	http    *http.Client
	logger  *log.Logger

	mu    sync.RWMutex
	token string

	// refreshMu makes concurrent 401s share one refresh.
	refreshMu sync.Mutex
}

func New(baseURL string, mode auth.Mode, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		mode:    mode,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

func (c *Client) Mode() auth.Mode { return c.mode }

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type authResponse struct {
	User        model.PublicUser `json:"user"`
	AccessToken string           `json:"accessToken"`
}

// Login authenticates with the shared secret or an account, depending on
// the mode. In open mode it does nothing.
func (c *Client) Login(ctx context.Context, login, password string) (*model.PublicUser, error) {
	switch c.mode {
	case auth.ModeShared:
		var out struct {
			Token string `json:"token"`
		}
		body := map[string]string{"username": login, "password": password}
		if err := c.send(ctx, http.MethodPost, "/login", body, &out, ""); err != nil {
			return nil, err
		}
		c.SetToken(out.Token)
		return nil, nil
	case auth.ModeAccount:
		var out authResponse
		body := map[string]string{"email": login, "password": password}
		if err := c.send(ctx, http.MethodPost, "/auth/login", body, &out, ""); err != nil {
			return nil, err
		}
		c.SetToken(out.AccessToken)
		return &out.User, nil
	default:
		return nil, nil
	}
}

func (c *Client) Register(ctx context.Context, email, password string) (*model.PublicUser, error) {
	if c.mode != auth.ModeAccount {
		return nil, fmt.Errorf("register is only available in account mode")
	}
	var out authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/register", body, &out, ""); err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out.User, nil
}

// Logout ends the session. The local token is dropped even if the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")
	if c.mode != auth.ModeAccount {
		return nil
	}
	return c.send(ctx, http.MethodPost, "/auth/logout", nil, nil, "")
}

func (c *Client) Me(ctx context.Context) (*model.PublicUser, error) {
	var out struct {
		User model.PublicUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, name, color string) (*model.Project, error) {
	body := map[string]string{"name": name}
	if color != "" {
		body["color"] = color
	}
	var out model.Project
	if err := c.do(ctx, http.MethodPost, "/projects", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	var out model.Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+id, nil, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, input model.TaskInput) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
}

// do performs an authenticated call. In account mode a 401 triggers one
// refresh and a single retry; when that fails, or in shared mode, the token
// is cleared.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token := c.Token()
	err := c.send(ctx, method, path, body, out, token)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	switch c.mode {
	case auth.ModeAccount:
		if rerr := c.refresh(ctx, token); rerr != nil {
			c.logger.Debug("refresh failed", "err", rerr)
			c.clearToken(token)
			return err
		}
		err = c.send(ctx, method, path, body, out, c.Token())
		if errors.Is(err, ErrUnauthorized) {
			c.clearToken(c.Token())
		}
		return err
	case auth.ModeShared:
		c.clearToken(token)
		return err
	default:
		return err
	}
}

// refresh obtains a new access token unless another goroutine already
// replaced stale while this one waited.
func (c *Client) refresh(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current := c.Token(); current != "" && current != stale {
		return nil
	}

	var out authResponse
	if err := c.send(ctx, http.MethodPost, "/auth/refresh", nil, &out, ""); err != nil {
		return err
	}
	c.SetToken(out.AccessToken)
	c.logger.Debug("access token refreshed", "user", out.User.ID)
	return nil
}

// clearToken drops the token only if it is still the one that failed.
func (c *Client) clearToken(failed string) {
	c.mu.Lock()
	if c.token == failed {
		c.token = ""
	}
	c.mu.Unlock()
}

func (c *Client) send(ctx context.Context, method, path string, body, out any, token string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &Error{Status: resp.StatusCode, Message: payload.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
