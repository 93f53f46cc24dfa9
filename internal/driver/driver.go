// Package driver provides the HTTP client for an instance's automation
// endpoint. The manager treats any Ping failure as "instance not running".
package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client errors.
var (
	// ErrUnreachable wraps transport-level failures talking to the endpoint.
	ErrUnreachable = errors.New("automation endpoint unreachable")
)

// RequestTimeout is the default per-request timeout.
const RequestTimeout = 10 * time.Second

// Automation API paths.
const (
	pingPath      = "/api/ping"
	statePath     = "/api/state"
	closeWorkPath = "/api/work/close"
	shutdownPath  = "/api/shutdown"
)

// State reports what a running instance says about itself.
type State struct {
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
	OpenWork  int       `json:"open_work"`
}

// Client talks to one instance's automation endpoint.
type Client struct {
	base string
	http *http.Client
}

// New creates a client for the given endpoint URL (e.g. http://127.0.0.1:8750).
func New(endpoint string) *Client {
	return &Client{
		base: strings.TrimRight(endpoint, "/"),
		http: &http.Client{Timeout: RequestTimeout},
	}
}

// Endpoint returns the endpoint URL this client talks to.
func (c *Client) Endpoint() string {
	return c.base
}

// Ping checks that the instance answers its automation endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, pingPath)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping: unexpected status %s", resp.Status)
	}
	return nil
}

// CloseWork asks the instance to close any open work (projects, sessions).
func (c *Client) CloseWork(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, closeWorkPath)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("close work: unexpected status %s", resp.Status)
	}
	return nil
}

// Shutdown requests a graceful shutdown of the instance.
func (c *Client) Shutdown(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, shutdownPath)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("shutdown: unexpected status %s", resp.Status)
	}
	return nil
}

// FetchState returns the instance's self-reported state. Used for display;
// the manager never bases reuse decisions on it.
func (c *Client) FetchState(ctx context.Context) (*State, error) {
	resp, err := c.do(ctx, http.MethodGet, statePath)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("state: unexpected status %s", resp.Status)
	}

	var state State
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &state, nil
}

// do issues one request against the automation API.
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return resp, nil
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
