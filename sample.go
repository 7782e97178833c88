package orca

import "context"

// Sample submits a sampling job and blocks until its result is available.
// It is SampleAsync followed immediately by Get on the same context.
func (t *Target) Sample(ctx context.Context, exp *Experiment, nSamples int, opts ...JobOption) (*SampleResult, error) {
	f, err := t.SampleAsync(ctx, exp, nSamples, opts...)
	if err != nil {
		return nil, err
	}
	return f.Get(ctx)
}
