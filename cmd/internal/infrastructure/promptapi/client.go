// Package promptapi is the HTTP client used by the command line utilities to
// talk to a running prompt API.
package promptapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/avast/retry-go/v4"
	"io"
	"net/http"
	"promptlib/cmd/internal/contract"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("prompt not found")
	ErrLocked     = errors.New("prompt is locked")
	ErrValidation = errors.New("invalid prompt")
	ErrNetwork    = errors.New("prompt api unreachable")
)

// StatusError is returned for any non-success response. It unwraps to the
// sentinel matching its status code, if any.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("prompt api responded with status %d", e.Status)
	}
	return fmt.Sprintf("prompt api responded with status %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden:
		return ErrLocked
	case http.StatusBadRequest:
		return ErrValidation
	default:
		return nil
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the API rooted at baseURL, for example
// "http://localhost:5000/api".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) List(ctx context.Context) ([]*contract.PromptResponse, error) {
	var prompts []*contract.PromptResponse
	if err := c.do(ctx, http.MethodGet, "/prompts", nil, &prompts); err != nil {
		return nil, err
	}
	if prompts == nil {
		prompts = []*contract.PromptResponse{}
	}
	return prompts, nil
}

// Create inserts req and returns the id assigned by the server.
func (c *Client) Create(ctx context.Context, req *contract.PromptRequest) (int, error) {
	var created contract.CreatedResponse
	if err := c.do(ctx, http.MethodPost, "/prompts", req, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/prompts/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) Health(ctx context.Context) (*contract.HealthResponse, error) {
	var health contract.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// WaitHealthy probes the health endpoint a bounded number of times before
// giving up.
func (c *Client) WaitHealthy(ctx context.Context, attempts uint, delay time.Duration) error {
	return retry.Do(
		func() error {
			_, err := c.Health(ctx)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %v", ErrNetwork, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// errorMessage pulls a readable message out of an API error body.
func errorMessage(data []byte) string {
	var body struct {
		Error  string              `json:"error"`
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}

	if body.Error != "" {
		return body.Error
	}

	parts := make([]string, 0, len(body.Errors))
	for field, problems := range body.Errors {
		parts = append(parts, field+": "+strings.Join(problems, ", "))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
