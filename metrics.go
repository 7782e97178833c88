package orca

import (
	"sort"
	"sync"
	"time"
)

// Metrics tracks client-side counters for a target.
type Metrics struct {
	mu             sync.RWMutex
	Submissions    int64
	SubmitFailures int64
	Completions    int64
	JobFailures    int64
	TotalJobTime   time.Duration

	AverageJobLatency time.Duration
	P95JobLatency     time.Duration

	latencies  []time.Duration
	windowSize int
}

func newMetrics() *Metrics {
	return &Metrics{
		latencies:  make([]time.Duration, 0, 1000),
		windowSize: 1000,
	}
}

func (m *Metrics) recordSubmission(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.Submissions++
	} else {
		m.SubmitFailures++
	}
}

// recordCompletion tracks a terminal job and its end-to-end latency.
func (m *Metrics) recordCompletion(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	if success {
		m.Completions++
	} else {
		m.JobFailures++
	}
	m.TotalJobTime += duration

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > m.windowSize {
		m.latencies = m.latencies[1:]
	}

	total := m.Completions + m.JobFailures
	m.AverageJobLatency = m.TotalJobTime / time.Duration(total)

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	p95Index := int(float64(len(sorted)) * 0.95)
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}
	m.P95JobLatency = sorted[p95Index]
}

// Export returns a snapshot of the counters.
func (m *Metrics) Export() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"submissions":     m.Submissions,
		"submit_failures": m.SubmitFailures,
		"completions":     m.Completions,
		"job_failures":    m.JobFailures,
		"avg_latency_ms":  m.AverageJobLatency.Milliseconds(),
		"p95_latency_ms":  m.P95JobLatency.Milliseconds(),
	}
}
