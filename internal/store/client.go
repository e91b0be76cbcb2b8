// Package store talks to the resource store that owns the employees
// collection. The store is full-replace only: List returns every record,
// Update sends the whole object, and write responses are ignored beyond
// their status.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/roster/internal/employee"
)

const (
	collectionPath = "/employees"
	// DefaultTimeout bounds a request when no timeout is configured.
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// Store is the request contract the TUI depends on.
type Store interface {
	List(ctx context.Context) ([]employee.Employee, error)
	Create(ctx context.Context, e employee.Employee) error
	Update(ctx context.Context, e employee.Employee) error
	Delete(ctx context.Context, id string) error
}

// Client implements Store over HTTP + JSON.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient prepares a client for the store rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the store root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches the whole collection.
func (c *Client) List(ctx context.Context) ([]employee.Employee, error) {
	body, err := c.do(ctx, OpList, "", http.MethodGet, c.collectionURL(), nil)
	if err != nil {
		return nil, err
	}
	var roster []employee.Employee
	if len(bytes.TrimSpace(body)) == 0 {
		return []employee.Employee{}, nil
	}
	if err := json.Unmarshal(body, &roster); err != nil {
		return nil, &RequestError{Op: OpList, Err: fmt.Errorf("%w: decode roster: %w", ErrStatus, err)}
	}
	if roster == nil {
		roster = []employee.Employee{}
	}
	return roster, nil
}

// Create posts a new employee carrying its client-generated id.
func (c *Client) Create(ctx context.Context, e employee.Employee) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("store: create: employee id is required")
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("store: create: encode: %w", err)
	}
	_, err = c.do(ctx, OpCreate, e.ID, http.MethodPost, c.collectionURL(), payload)
	return err
}

// Update replaces the employee stored under e.ID.
func (c *Client) Update(ctx context.Context, e employee.Employee) error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("store: update: employee id is required")
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("store: update: encode: %w", err)
	}
	_, err = c.do(ctx, OpUpdate, e.ID, http.MethodPut, c.itemURL(e.ID), payload)
	return err
}

// Delete removes the employee stored under id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("store: delete: employee id is required")
	}
	_, err := c.do(ctx, OpDelete, id, http.MethodDelete, c.itemURL(id), nil)
	return err
}

func (c *Client) collectionURL() string {
	return c.baseURL + collectionPath
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + collectionPath + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, op Op, id, method, target string, payload []byte) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &RequestError{Op: op, ID: id, Err: fmt.Errorf("%w: %w", ErrNetwork, err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("store request failed",
			zap.String("op", string(op)),
			zap.String("id", id),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err))
		return nil, &RequestError{Op: op, ID: id, Err: fmt.Errorf("%w: %w", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &RequestError{Op: op, ID: id, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: read body: %w", ErrNetwork, err)}
	}

	fields := []zap.Field{
		zap.String("op", string(op)),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	}
	if id != "" {
		fields = append(fields, zap.String("id", id))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("store request rejected", fields...)
		detail := statusDetail(resp.StatusCode, body)
		if resp.StatusCode == http.StatusNotFound {
			return nil, &RequestError{Op: op, ID: id, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrNotFound, ErrStatus)}
		}
		return nil, &RequestError{Op: op, ID: id, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %s", ErrStatus, detail)}
	}
	c.logger.Debug("store request", fields...)
	return body, nil
}

func statusDetail(code int, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return payload.Error
	}
	return http.StatusText(code)
}
