// Package client provides the HTTP adapter for the user record store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/FrancescoXX/userstack/internal/models"
)

// Cause classifies a store request failure. The presentation layer folds
// every cause into one generic message; the cause stays available for
// logging and tests.
type Cause int

const (
	// CauseTransport covers connection and protocol level failures.
	CauseTransport Cause = iota
	// CauseStatus covers responses with a non-success status code.
	CauseStatus
	// CauseDecode covers malformed response bodies.
	CauseDecode
)

// String returns a short name for the cause.
func (c Cause) String() string {
	switch c {
	case CauseTransport:
		return "transport"
	case CauseStatus:
		return "status"
	case CauseDecode:
		return "decode"
	}
	return "unknown"
}

// StoreError reports a failed store request.
type StoreError struct {
	Op         string
	Cause      Cause
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Cause == CauseStatus {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Cause, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Client talks to the user record store over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the store at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
}

// NewWithHTTPClient creates a Client using a caller-supplied http.Client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// List fetches all users.
func (c *Client) List(ctx context.Context) ([]models.User, error) {
	resp, err := c.do(ctx, "list", http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, &StoreError{Op: "list", Cause: CauseDecode, Err: err}
	}
	return users, nil
}

// Insert creates a new user. The store responds with the full updated list.
func (c *Client) Insert(ctx context.Context, params models.UserParams) ([]models.User, error) {
	resp, err := c.do(ctx, "insert", http.MethodPost, "/api/users", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, &StoreError{Op: "insert", Cause: CauseDecode, Err: err}
	}
	return users, nil
}

// Replace overwrites user id with params. The store responds with the
// full updated list.
func (c *Client) Replace(ctx context.Context, id int64, params models.UserParams) ([]models.User, error) {
	path := fmt.Sprintf("/api/users/%d", id)
	resp, err := c.do(ctx, "replace", http.MethodPut, path, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, &StoreError{Op: "replace", Cause: CauseDecode, Err: err}
	}
	return users, nil
}

// Remove deletes user id.
func (c *Client) Remove(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/users/%d", id)
	resp, err := c.do(ctx, "remove", http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// do issues one request and normalizes transport and status failures.
// Every request carries an X-Request-ID for log correlation.
func (c *Client) do(ctx context.Context, op, method, path string, body interface{}) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &StoreError{Op: op, Cause: CauseDecode, Err: err}
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &StoreError{Op: op, Cause: CauseTransport, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &StoreError{Op: op, Cause: CauseTransport, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StoreError{Op: op, Cause: CauseStatus, StatusCode: resp.StatusCode}
	}

	return resp, nil
}
