// Package client is a typed Go client for the evaluation API plus
// client-side stores that keep a cached list in step with mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	MsgGeneric = "Something went wrong. Please try again."
	MsgNetwork = "Network error. Please check your connection."
)

// APIError is returned for every failed call. Transport failures carry Status 0.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Message extracts the user-facing message of err, falling back to MsgGeneric.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgGeneric
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

// Health is the payload of GET /health.
type Health struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Uptime   string `json:"uptime"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for an API rooted at baseURL, e.g. "http://localhost:3001/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ─── Subjects ───────────────────────────────────────────────────────

func (c *Client) ListSubjects(ctx context.Context) ([]Subject, error) {
	var out []Subject
	return out, c.do(ctx, http.MethodGet, "/subjects", nil, &out)
}

func (c *Client) GetSubject(ctx context.Context, id int) (*Subject, error) {
	var out Subject
	if err := c.do(ctx, http.MethodGet, "/subjects/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSubject(ctx context.Context, req CreateSubjectRequest) (*Subject, error) {
	var out Subject
	if err := c.do(ctx, http.MethodPost, "/subjects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSubject(ctx context.Context, id int, req UpdateSubjectRequest) (*Subject, error) {
	var out Subject
	if err := c.do(ctx, http.MethodPut, "/subjects/"+strconv.Itoa(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSubject(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/subjects/"+strconv.Itoa(id), nil, nil)
}

// ─── Competencies ───────────────────────────────────────────────────

func (c *Client) ListCompetencies(ctx context.Context) ([]Competency, error) {
	var out []Competency
	return out, c.do(ctx, http.MethodGet, "/competencies", nil, &out)
}

func (c *Client) ListCompetenciesBySubject(ctx context.Context, subjectID int) ([]Competency, error) {
	var out []Competency
	return out, c.do(ctx, http.MethodGet, "/competencies/subject/"+strconv.Itoa(subjectID), nil, &out)
}

func (c *Client) GetCompetency(ctx context.Context, id int) (*Competency, error) {
	var out Competency
	if err := c.do(ctx, http.MethodGet, "/competencies/"+strconv.Itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCompetency(ctx context.Context, req CreateCompetencyRequest) (*Competency, error) {
	var out Competency
	if err := c.do(ctx, http.MethodPost, "/competencies", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCompetency(ctx context.Context, id int, req UpdateCompetencyRequest) (*Competency, error) {
	var out Competency
	if err := c.do(ctx, http.MethodPut, "/competencies/"+strconv.Itoa(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCompetency(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/competencies/"+strconv.Itoa(id), nil, nil)
}

// ─── Misc ───────────────────────────────────────────────────────────

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export streams the XLSX workbook into w.
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/export", nil)
	if err != nil {
		return &APIError{Message: MsgGeneric, Err: err}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &APIError{Message: MsgNetwork, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decodeFailure(res)
	}
	if _, err := io.Copy(w, res.Body); err != nil {
		return &APIError{Message: MsgNetwork, Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &APIError{Message: MsgGeneric, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &APIError{Message: MsgGeneric, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &APIError{Message: MsgNetwork, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return decodeFailure(res)
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return &APIError{Status: res.StatusCode, Message: MsgGeneric, Err: err}
	}
	if !env.Success {
		return &APIError{Status: res.StatusCode, Code: env.Error, Message: env.Message, Fields: env.Fields}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Status: res.StatusCode, Message: MsgGeneric, Err: err}
	}
	return nil
}

func decodeFailure(res *http.Response) error {
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil || env.Message == "" {
		return &APIError{Status: res.StatusCode, Message: MsgGeneric, Err: err}
	}
	return &APIError{Status: res.StatusCode, Code: env.Error, Message: env.Message, Fields: env.Fields}
}
