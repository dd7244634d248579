package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hireloop/hireloop/internal/domain/model"
	"github.com/hireloop/hireloop/internal/domain/mutation"
	"github.com/hireloop/hireloop/pkg/metrics"
)

// Default HTTP client configuration.
const defaultTimeout = 10 * time.Second

// Client implements Authority over HTTP.
type Client struct {
	base string
	hc   *http.Client
}

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithTimeout sets the per-call timeout on the default http.Client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.hc.Timeout = d
		}
	}
}

// NewClient creates an HTTP authority client against baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReorderJob posts the move and decodes the authoritative job.
func (c *Client) ReorderJob(ctx context.Context, req ReorderRequest) (model.Job, error) {
	var job model.Job
	err := c.call(ctx, http.MethodPost, "/jobs/"+req.JobID+"/reorder", req, &job)
	return job, err
}

// UpdateJob patches the job's descriptive fields and decodes the
// authoritative record.
func (c *Client) UpdateJob(ctx context.Context, req UpdateJobRequest) (model.Job, error) {
	var job model.Job
	err := c.call(ctx, http.MethodPatch, "/jobs/"+req.JobID, req, &job)
	return job, err
}

// UpdateStage posts the transition and decodes the authoritative candidate.
func (c *Client) UpdateStage(ctx context.Context, req StageRequest) (model.Candidate, error) {
	var cand model.Candidate
	err := c.call(ctx, http.MethodPost, "/candidates/"+req.CandidateID+"/stage", req, &cand)
	return cand, err
}

// FetchJob re-reads one job.
func (c *Client) FetchJob(ctx context.Context, id string) (model.Job, error) {
	var job model.Job
	err := c.call(ctx, http.MethodGet, "/jobs/"+id, nil, &job)
	return job, err
}

// FetchCandidate re-reads one candidate.
func (c *Client) FetchCandidate(ctx context.Context, id string) (model.Candidate, error) {
	var cand model.Candidate
	err := c.call(ctx, http.MethodGet, "/candidates/"+id, nil, &cand)
	return cand, err
}

// errorBody is the authority's error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	start := time.Now()
	err := c.do(ctx, method, path, in, out)
	metrics.RecordRemoteLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordRemoteFailure(classLabel(err))
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		// Transport failure or timeout: transient, safe to retry whole op.
		return fmt.Errorf("%s %s: %v: %w", method, path, err, mutation.ErrNetwork)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return classify(method, path, resp.StatusCode, eb)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %v: %w", method, path, err, mutation.ErrNetwork)
		}
	}
	return nil
}

// classify maps authority status codes onto the mutation error taxonomy.
func classify(method, path string, status int, eb errorBody) error {
	detail := eb.Message
	if detail == "" {
		detail = http.StatusText(status)
	}
	var kind error
	switch {
	case status == http.StatusNotFound:
		kind = mutation.ErrNotFound
	case status == http.StatusConflict:
		kind = mutation.ErrConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = mutation.ErrValidation
	default:
		kind = mutation.ErrNetwork
	}
	return fmt.Errorf("%s %s: %s: %w", method, path, detail, kind)
}

func classLabel(err error) string {
	switch {
	case errors.Is(err, mutation.ErrConflict):
		return "conflict"
	case errors.Is(err, mutation.ErrValidation):
		return "validation"
	case errors.Is(err, mutation.ErrNotFound):
		return "not_found"
	default:
		return "network"
	}
}
