package orca

import "time"

// Config holds client-side tunables. Zero values fall back to the
// defaults below at the point of use.
type Config struct {
	RequestTimeout    time.Duration // Per-request HTTP timeout
	PollInterval      time.Duration // Delay between job status polls
	MaxSubmitAttempts int           // Submission retry budget
	BreakerFailures   int           // Consecutive submit failures before an endpoint opens
	BreakerReset      time.Duration // Time an open endpoint waits before probing again
}

func NewConfig() *Config {
	return &Config{
		RequestTimeout:    30 * time.Second,
		PollInterval:      500 * time.Millisecond,
		MaxSubmitAttempts: 3,
		BreakerFailures:   5,
		BreakerReset:      30 * time.Second,
	}
}

// withDefaults returns a copy with zero fields filled from NewConfig.
func (c *Config) withDefaults() *Config {
	d := NewConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.RequestTimeout == 0 {
		out.RequestTimeout = d.RequestTimeout
	}
	if out.PollInterval == 0 {
		out.PollInterval = d.PollInterval
	}
	if out.MaxSubmitAttempts == 0 {
		out.MaxSubmitAttempts = d.MaxSubmitAttempts
	}
	if out.BreakerFailures == 0 {
		out.BreakerFailures = d.BreakerFailures
	}
	if out.BreakerReset == 0 {
		out.BreakerReset = d.BreakerReset
	}
	return &out
}
