// Package remote talks to the REST resource collection that owns the user
// records.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getmockd/userdesk/internal/id"
	"github.com/getmockd/userdesk/pkg/logging"
	"github.com/getmockd/userdesk/pkg/record"
)

const (
	// DefaultResource is the collection name used when none is configured.
	DefaultResource = "Users"

	// RequestIDHeader carries a per-request correlation id.
	RequestIDHeader = "X-Request-ID"

	// maxErrorBody caps how much of a rejection body is kept in the error.
	maxErrorBody = 4 << 10
)

// Store is the remote collection contract. Any store honouring these four
// operations and their response shapes can back the client.
type Store interface {
	// List returns every record in the order the store keeps them.
	List(ctx context.Context) ([]record.Record, error)
	// Create stores a new record and returns it with its assigned id.
	Create(ctx context.Context, rec record.Record) (record.Record, error)
	// Replace overwrites the record with rec.ID and returns the confirmed record.
	Replace(ctx context.Context, rec record.Record) (record.Record, error)
	// Delete removes the record with the given id.
	Delete(ctx context.Context, recID record.ID) error
}

// Client implements Store over HTTP.
type Client struct {
	baseURL    string
	resource   string
	httpClient *http.Client
	timeout    time.Duration
	log        *slog.Logger
}

var _ Store = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP timeout for the client. It is applied to a copy
// of any client given through WithHTTPClient; zero keeps that client's own
// timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithResource sets the collection name (default "Users").
func WithResource(name string) ClientOption {
	return func(c *Client) {
		name = strings.Trim(name, "/")
		if name != "" {
			c.resource = name
		}
	}
}

// WithLogger sets the operational logger for the client.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates a client for the collection served under baseURL
// (e.g. "http://localhost:3000").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		resource: DefaultResource,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Resource returns the configured collection name.
func (c *Client) Resource() string {
	return c.resource
}

// List returns all records.
func (c *Client) List(ctx context.Context) ([]record.Record, error) {
	resp, err := c.doRequest(ctx, "list", http.MethodGet, c.collectionPath(), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError("list", resp)
	}

	var records []record.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, c.decodeError("list", resp, err)
	}
	if records == nil {
		records = []record.Record{}
	}
	return records, nil
}

// Create posts {name, email} and returns the created record.
func (c *Client) Create(ctx context.Context, rec record.Record) (record.Record, error) {
	body, err := json.Marshal(rec.CreateBody())
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to encode record: %w", err)
	}

	resp, err := c.doRequest(ctx, "create", http.MethodPost, c.collectionPath(), body)
	if err != nil {
		return record.Record{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return record.Record{}, c.parseError("create", resp)
	}

	var created record.Record
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return record.Record{}, c.decodeError("create", resp, err)
	}
	if created.ID.IsZero() {
		return record.Record{}, c.decodeError("create", resp, errors.New("response has no id"))
	}
	return created, nil
}

// Replace puts {id, name, email} to the record's URL. The response body is
// used when it decodes to a record with an id; otherwise the sent record is
// taken as confirmed.
func (c *Client) Replace(ctx context.Context, rec record.Record) (record.Record, error) {
	if rec.ID.IsZero() {
		return record.Record{}, errors.New("cannot replace a record without an id")
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to encode record: %w", err)
	}

	resp, err := c.doRequest(ctx, "update", http.MethodPut, c.itemPath(rec.ID), body)
	if err != nil {
		return record.Record{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return record.Record{}, c.parseError("update", resp)
	}

	var confirmed record.Record
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Debug("update response body unreadable, using sent record", "id", rec.ID.String(), "error", err)
	}
	if len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &confirmed) == nil && confirmed.ID.Equal(rec.ID) {
		return confirmed, nil
	}
	return rec, nil
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, recID record.ID) error {
	resp, err := c.doRequest(ctx, "delete", http.MethodDelete, c.itemPath(recID), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.parseError("delete", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) collectionPath() string {
	return "/" + c.resource
}

func (c *Client) itemPath(recID record.ID) string {
	return "/" + c.resource + "/" + url.PathEscape(recID.String())
}

// doRequest performs an HTTP request. Any failure to obtain a response is a
// TransportError.
func (c *Client) doRequest(ctx context.Context, op, method, path string, body []byte) (*http.Response, error) {
	fullURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := id.RequestID()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("remote request failed", "op", op, "method", method, "url", fullURL, "requestId", reqID, "error", err)
		return nil, &TransportError{Op: op, URL: fullURL, Err: err}
	}
	c.log.Debug("remote request",
		"op", op,
		"method", method,
		"url", fullURL,
		"status", resp.StatusCode,
		"requestId", reqID,
		"duration", time.Since(start),
	)
	return resp, nil
}

// parseError turns a non-success response into a RejectionError.
func (c *Client) parseError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Message != "":
			msg = errResp.Message
		case errResp.Error != "":
			msg = errResp.Error
		}
	}

	return &RejectionError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}

func (c *Client) decodeError(op string, resp *http.Response, err error) error {
	return &TransportError{
		Op:  op,
		URL: resp.Request.URL.String(),
		Err: fmt.Errorf("failed to parse response: %w", err),
	}
}
