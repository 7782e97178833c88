package orca

import "time"

// job is the client-side description of one sampling submission.
type job struct {
	Name        string
	QPU         int
	TTL         time.Duration
	RetryPolicy *RetryPolicy
	StartTime   time.Time
}

// JobOption is a function type for configuring submissions
type JobOption func(*job)

// WithQPU addresses a specific virtual QPU by id. Defaults to 0.
func WithQPU(id int) JobOption {
	return func(j *job) {
		j.QPU = id
	}
}

// WithTTL bounds how long a resolved result is retained for collection.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *job) {
		j.TTL = ttl
	}
}

// WithJobName labels the job on the remote service.
func WithJobName(name string) JobOption {
	return func(j *job) {
		j.Name = name
	}
}
