// Package client is the HTTP client for the task API.
package client

import (
	"bytes"
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

	"github.com/Tsiatosika/Todo-project/domain/task"
	"github.com/Tsiatosika/Todo-project/modules/activity"
)

// DefaultTimeout bounds a single request when none is configured.
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the task API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task API returned HTTP %d", e.StatusCode)
	}
	return e.Message
}

// Unwrap matches the domain sentinel for the error code.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case task.CodeValidation, "invalid_request":
		return task.ErrValidation
	case task.CodeInvalidID:
		return task.ErrInvalidID
	case task.CodeNotFound:
		return task.ErrNotFound
	case task.CodeStore:
		return task.ErrStore
	default:
		return nil
	}
}

// Client talks to the task API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchAll returns every task, newest first.
func (c *Client) FetchAll(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

type createResponse struct {
	InsertedID string     `json:"insertedId"`
	Task       *task.Task `json:"task"`
}

// Create creates a task from fields. Name is required by the server.
func (c *Client) Create(ctx context.Context, fields task.Fields) (*task.Task, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/tasks", fields, &resp); err != nil {
		return nil, err
	}
	if resp.Task == nil {
		return nil, fmt.Errorf("create response missing task (insertedId %q)", resp.InsertedID)
	}
	return resp.Task, nil
}

// Update applies fields to the task with id.
func (c *Client) Update(ctx context.Context, id string, fields task.Fields) (*task.Task, error) {
	var updated task.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

type deleteResponse struct {
	Message     string     `json:"message"`
	DeletedTask *task.Task `json:"deletedTask"`
}

// Remove deletes the task with id and returns its prior value.
func (c *Client) Remove(ctx context.Context, id string) (*task.Task, error) {
	var resp deleteResponse
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.DeletedTask, nil
}

type activityResponse struct {
	Entries []activity.Entry `json:"entries"`
	Total   int              `json:"total"`
}

// Activity returns recent task activity, newest first. A positive limit
// keeps only that many entries.
func (c *Client) Activity(ctx context.Context, limit int) ([]activity.Entry, error) {
	path := "/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var resp activityResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Entries == nil {
		resp.Entries = []activity.Entry{}
	}
	return resp.Entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}

	if apiErr.Code == "" && status >= http.StatusInternalServerError {
		apiErr.Code = task.CodeStore
	}
	return apiErr
}

// IsAPIError reports whether err carries an API error response.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
