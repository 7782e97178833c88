package orca

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrJobFailed wraps a terminal failure reported by the service.
	ErrJobFailed = errors.New("sampling job failed")

	// ErrJobCanceled is returned by Get after the job was canceled.
	ErrJobCanceled = errors.New("sampling job canceled")

	// ErrCircuitOpen is returned at submission when the endpoint's
	// circuit breaker is rejecting requests.
	ErrCircuitOpen = errors.New("endpoint circuit breaker is open")
)

// maxPollFailures is how many consecutive status-poll errors a job
// tolerates before it is declared lost.
const maxPollFailures = 5

var submissionSeq atomic.Int64

/*
SampleFuture is an opaque handle to one asynchronously submitted sampling
job. Get blocks until the job reaches a terminal state; Done reports
without blocking; Cancel abandons the job on the service and unblocks any
waiters.
*/
type SampleFuture struct {
	id     string
	jobID  string
	qpu    int
	target *Target
	ep     *endpoint
	stop   context.CancelFunc
	ch     chan resultValue

	mu       sync.Mutex
	resolved bool
	result   *SampleResult
	err      error
}

/*
SampleAsync submits a sampling job to one virtual QPU and returns
immediately with a future. The submission itself is synchronous (and
retried per the job's retry policy); only the wait for results is
deferred. ctx bounds the submission, not the job's lifetime.
*/
func (t *Target) SampleAsync(ctx context.Context, exp *Experiment, nSamples int, opts ...JobOption) (*SampleFuture, error) {
	if exp == nil {
		return nil, fmt.Errorf("%w: nil experiment", ErrInvalidExperiment)
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	if nSamples <= 0 {
		return nil, fmt.Errorf("%w: sample count %d must be positive", ErrInvalidExperiment, nSamples)
	}

	j := &job{
		StartTime:   time.Now(),
		RetryPolicy: defaultRetryPolicy(t.config.MaxSubmitAttempts),
	}
	for _, opt := range opts {
		opt(j)
	}

	ep, err := t.endpointFor(j.QPU)
	if err != nil {
		return nil, err
	}
	if !ep.breaker.Allow() {
		return nil, fmt.Errorf("%w: QPU %d", ErrCircuitOpen, j.QPU)
	}

	req := &sampleRequest{
		InputState:  exp.InputState,
		LoopLengths: exp.LoopLengths,
		BSAngles:    exp.BSAngles,
		NSamples:    nSamples,
		JobName:     j.Name,
	}

	jobID, err := submitWithRetries(ctx, ep, req, j.RetryPolicy)
	if err != nil {
		ep.breaker.RecordFailure()
		t.metrics.recordSubmission(false)
		return nil, err
	}
	ep.breaker.RecordSuccess()
	t.metrics.recordSubmission(true)

	// Remote job ids are only unique per endpoint.
	id := fmt.Sprintf("qpu%d/%s/%d", j.QPU, jobID, submissionSeq.Add(1))

	pollCtx, stop := context.WithCancel(t.pollCtx)
	f := &SampleFuture{
		id:     id,
		jobID:  jobID,
		qpu:    j.QPU,
		target: t,
		ep:     ep,
		stop:   stop,
		ch:     t.space.Await(id),
	}
	go f.poll(pollCtx, j)
	return f, nil
}

// submitWithRetries drives the submission retry schedule.
func submitWithRetries(ctx context.Context, ep *endpoint, req *sampleRequest, policy *RetryPolicy) (string, error) {
	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := policy.Strategy.NextDelay(attempt)
			logger.Debugf("retrying submission to %s, attempt %d after %v", ep.baseURL, attempt+1, delay)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		jobID, err := ep.submit(ctx, req)
		if err == nil {
			return jobID, nil
		}
		lastErr = err

		if policy.Filter != nil && !policy.Filter(err) {
			break
		}
	}
	return "", fmt.Errorf("all submission attempts to %s failed: %w", ep.baseURL, lastErr)
}

// poll drives one job to a terminal state and stores the outcome.
func (f *SampleFuture) poll(ctx context.Context, j *job) {
	ticker := time.NewTicker(f.target.config.PollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		st, err := f.ep.status(ctx, f.jobID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			if failures >= maxPollFailures {
				f.finish(j, nil, fmt.Errorf("lost contact with job %s after %d polls: %w",
					f.jobID, failures, err))
				return
			}
			logger.Warnf("status poll %d/%d for job %s failed: %v", failures, maxPollFailures, f.jobID, err)
			continue
		}
		failures = 0

		if !st.terminal() {
			continue
		}

		switch st.Status {
		case statusCompleted:
			if st.Results == nil {
				f.finish(j, nil, fmt.Errorf("%w: job %s completed without results", ErrJobFailed, f.jobID))
				return
			}
			f.finish(j, &SampleResult{
				JobID:   f.jobID,
				QPU:     f.qpu,
				Shots:   st.Results.NSamples,
				Counts:  st.Results.Counts,
				Elapsed: time.Since(j.StartTime),
			}, nil)
		case statusCanceled:
			f.finish(j, nil, fmt.Errorf("job %s: %w", f.jobID, ErrJobCanceled))
		default:
			f.finish(j, nil, fmt.Errorf("job %s: %w: %s", f.jobID, ErrJobFailed, st.Error))
		}
		return
	}
}

// finish caches the terminal value and publishes it to the result space.
func (f *SampleFuture) finish(j *job, result *SampleResult, err error) {
	f.mu.Lock()
	f.result = result
	f.err = err
	f.resolved = true
	f.mu.Unlock()

	f.target.metrics.recordCompletion(j.StartTime, err == nil)
	f.target.space.Store(f.id, result, err, j.TTL)
}

/*
Get blocks until the job reaches a terminal state and returns its result.
ctx bounds only this wait; passing context.Background() waits
indefinitely. Get may be called repeatedly and from multiple goroutines;
every call observes the same outcome.
*/
func (f *SampleFuture) Get(ctx context.Context) (*SampleResult, error) {
	f.mu.Lock()
	if f.resolved {
		defer f.mu.Unlock()
		return f.result, f.err
	}
	f.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case rv, ok := <-f.ch:
		f.mu.Lock()
		defer f.mu.Unlock()
		if ok {
			f.result = rv.Result
			f.err = rv.Error
			f.resolved = true
		}
		if !f.resolved {
			return nil, ErrSpaceClosed
		}
		return f.result, f.err
	}
}

// Done reports whether the job has reached a terminal state.
func (f *SampleFuture) Done() bool {
	f.mu.Lock()
	resolved := f.resolved
	f.mu.Unlock()
	return resolved || f.target.space.Resolved(f.id)
}

// Cancel stops polling, asks the service to abandon the job (best
// effort), and unblocks waiters with ErrJobCanceled. A job that already
// reached a terminal state keeps its original outcome.
func (f *SampleFuture) Cancel() {
	f.stop()

	f.mu.Lock()
	already := f.resolved
	if !already {
		f.err = fmt.Errorf("job %s: %w", f.jobID, ErrJobCanceled)
		f.resolved = true
	}
	f.mu.Unlock()
	if already {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.target.config.RequestTimeout)
	defer cancel()
	if err := f.ep.cancel(ctx, f.jobID); err != nil {
		logger.Warnf("cancel of job %s failed: %v", f.jobID, err)
	}

	f.target.space.Store(f.id, nil, fmt.Errorf("job %s: %w", f.jobID, ErrJobCanceled), 0)
}

// QPU returns the virtual QPU id the job was submitted to.
func (f *SampleFuture) QPU() int {
	return f.qpu
}

// JobID returns the remote job id assigned by the service.
func (f *SampleFuture) JobID() string {
	return f.jobID
}
