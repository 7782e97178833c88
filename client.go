package orca

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// Job status values reported by the ORCA service.
const (
	statusQueued    = "queued"
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
	statusCanceled  = "canceled"
)

// sampleRequest is the submission payload for a sampling job.
type sampleRequest struct {
	InputState  []int     `json:"input_state"`
	LoopLengths []int     `json:"loop_lengths"`
	BSAngles    []float64 `json:"bs_angles"`
	NSamples    int       `json:"n_samples"`
	JobName     string    `json:"job_name,omitempty"`
}

// submitResponse acknowledges a submission.
type submitResponse struct {
	JobID string `json:"job_id"`
}

// jobResults carries the terminal sample-count distribution.
type jobResults struct {
	Counts   map[string]int `json:"counts"`
	NSamples int            `json:"n_samples"`
}

// jobStatusResponse is returned by the status poll.
type jobStatusResponse struct {
	JobID   string      `json:"job_id"`
	Status  string      `json:"status"`
	Error   string      `json:"error,omitempty"`
	Results *jobResults `json:"results,omitempty"`
}

func (r *jobStatusResponse) terminal() bool {
	return r.Status == statusCompleted || r.Status == statusFailed || r.Status == statusCanceled
}

// APIError is a non-2xx response from the ORCA service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("orca service returned %d: %s", e.StatusCode, e.Message)
}

// Transient reports whether retrying the request could plausibly succeed.
func (e *APIError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// isTransient classifies submission errors for the retry filter.
// Transport-level failures (refused connections, timeouts) surface as
// *url.Error and are worth retrying; 4xx responses are not.
func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// endpoint is one access URL of a target, i.e. one virtual QPU.
type endpoint struct {
	baseURL string
	client  *http.Client
	token   string
	breaker *CircuitBreaker
}

func (e *endpoint) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
		rdr = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(msg))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// submit posts a sampling job and returns the remote job id.
func (e *endpoint) submit(ctx context.Context, req *sampleRequest) (string, error) {
	var resp submitResponse
	if err := e.do(ctx, http.MethodPost, "/v1/sample", req, &resp); err != nil {
		logger.WithFields(logrus.Fields{
			"endpoint": e.baseURL,
			"error":    err,
		}).Warn("sample submission failed")
		return "", err
	}
	if resp.JobID == "" {
		return "", fmt.Errorf("orca service accepted the job but returned no job id")
	}
	logger.WithFields(logrus.Fields{
		"endpoint": e.baseURL,
		"job_id":   resp.JobID,
	}).Debug("sample job submitted")
	return resp.JobID, nil
}

// status polls a submitted job.
func (e *endpoint) status(ctx context.Context, jobID string) (*jobStatusResponse, error) {
	var resp jobStatusResponse
	if err := e.do(ctx, http.MethodGet, "/v1/sample/"+jobID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// cancel asks the service to abandon a submitted job.
func (e *endpoint) cancel(ctx context.Context, jobID string) error {
	return e.do(ctx, http.MethodDelete, "/v1/sample/"+jobID, nil, nil)
}
