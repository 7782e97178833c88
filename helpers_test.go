package orca

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// fakeService is an in-process stand-in for one ORCA endpoint. Jobs
// complete after the configured delay; the first failSubmits submissions
// are rejected with a 503.
type fakeService struct {
	mu          sync.Mutex
	seq         int
	jobs        map[string]*fakeJob
	delay       time.Duration
	failSubmits int
	submits     int
	polls       int
	cancels     int
	counts      map[string]int
	server      *httptest.Server
}

type fakeJob struct {
	readyAt  time.Time
	nSamples int
	canceled bool
	failWith string
}

func newFakeService(delay time.Duration) *fakeService {
	s := &fakeService{
		jobs:  make(map[string]*fakeJob),
		delay: delay,
		counts: map[string]int{
			"10101010": 6000,
			"01010101": 4000,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sample", s.handleSubmit)
	mux.HandleFunc("GET /v1/sample/{id}", s.handleStatus)
	mux.HandleFunc("DELETE /v1/sample/{id}", s.handleCancel)
	s.server = httptest.NewServer(mux)
	return s
}

func (s *fakeService) URL() string { return s.server.URL }
func (s *fakeService) Close()      { s.server.Close() }

func (s *fakeService) Submits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submits
}

func (s *fakeService) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func (s *fakeService) Cancels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

func (s *fakeService) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submits++
	if s.failSubmits > 0 {
		s.failSubmits--
		http.Error(w, "service warming up", http.StatusServiceUnavailable)
		return
	}

	s.seq++
	id := fmt.Sprintf("job-%d", s.seq)
	s.jobs[id] = &fakeJob{
		readyAt:  time.Now().Add(s.delay),
		nSamples: req.NSamples,
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(submitResponse{JobID: id})
}

func (s *fakeService) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.polls++
	id := r.PathValue("id")
	j, ok := s.jobs[id]
	if !ok {
		http.Error(w, "no such job", http.StatusNotFound)
		return
	}

	resp := jobStatusResponse{JobID: id, Status: statusRunning}
	switch {
	case j.canceled:
		resp.Status = statusCanceled
	case j.failWith != "":
		resp.Status = statusFailed
		resp.Error = j.failWith
	case time.Now().After(j.readyAt):
		resp.Status = statusCompleted
		resp.Results = &jobResults{Counts: s.counts, NSamples: j.nSamples}
	}
	json.NewEncoder(w).Encode(resp)
}

func (s *fakeService) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancels++
	if j, ok := s.jobs[r.PathValue("id")]; ok {
		j.canceled = true
	}
	w.WriteHeader(http.StatusOK)
}

// failJob marks an existing job as failed with the given message.
func (s *fakeService) failJob(id, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.failWith = msg
	}
}

// testConfig keeps polling tight so tests resolve quickly.
func testConfig() *Config {
	return &Config{
		RequestTimeout:    2 * time.Second,
		PollInterval:      10 * time.Millisecond,
		MaxSubmitAttempts: 3,
		BreakerFailures:   5,
		BreakerReset:      100 * time.Millisecond,
	}
}
