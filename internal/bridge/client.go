// Package bridge is a thin HTTP client for the lab bridge backend.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	StatusPath  = "/status"
	RunTaskPath = "/run-task"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// StatusResponse is the body of GET /status
type StatusResponse struct {
	Online *bool `json:"online"`
}

// TaskRequest is the body of POST /run-task
type TaskRequest struct {
	Command string `json:"command"`
}

// TaskResponse is the body of a successful POST /run-task
type TaskResponse struct {
	Message *string `json:"message"`
}

// Client talks to the bridge backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets a transport-level timeout on every request. Callers
// usually bound requests with a context instead.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// New creates a client for baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Status asks the backend whether the bridge is online.
func (c *Client) Status(ctx context.Context) (bool, error) {
	var resp StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, StatusPath, nil, &resp); err != nil {
		return false, err
	}
	if resp.Online == nil {
		return false, &DecodeError{Err: errors.New(`missing field "online"`)}
	}
	return *resp.Online, nil
}

// RunTask asks the backend to run command and returns its message.
func (c *Client) RunTask(ctx context.Context, command string) (string, error) {
	var resp TaskResponse
	if err := c.doJSON(ctx, http.MethodPost, RunTaskPath, TaskRequest{Command: command}, &resp); err != nil {
		return "", err
	}
	if resp.Message == nil {
		return "", &DecodeError{Err: errors.New(`missing field "message"`)}
	}
	return *resp.Message, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &TransportError{Op: method, URL: url, Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &TransportError{Op: method, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: method, URL: url, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
