package orca

import (
	"context"
	"fmt"

	"github.com/theapemachine/errnie"
)

/*
SampleAllAsync fires one sampling job per virtual QPU, id 0 through
NumQPUs()-1, and returns the futures in submission order before any of
them is resolved. Launching everything up front lets the hardware run the
QPUs in parallel while the caller is still single-threaded.

If any submission fails, the jobs already launched are canceled and the
error is returned with the failing QPU id.
*/
func (t *Target) SampleAllAsync(ctx context.Context, exp *Experiment, nSamples int, opts ...JobOption) ([]*SampleFuture, error) {
	errnie.Info(
		"SampleAllAsync - fanning out over %v virtual QPUs, %v samples each",
		t.NumQPUs(),
		nSamples,
	)

	futures := make([]*SampleFuture, 0, t.NumQPUs())
	for i := 0; i < t.NumQPUs(); i++ {
		jobOpts := make([]JobOption, 0, len(opts)+1)
		jobOpts = append(jobOpts, opts...)
		jobOpts = append(jobOpts, WithQPU(i))

		f, err := t.SampleAsync(ctx, exp, nSamples, jobOpts...)
		if err != nil {
			for _, launched := range futures {
				launched.Cancel()
			}
			return nil, fmt.Errorf("QPU %d: %w", i, err)
		}
		futures = append(futures, f)
	}
	return futures, nil
}

/*
CollectAll drains futures strictly in slice order, blocking on each in
turn. Results therefore come back in submission (QPU id) order no matter
which job completed first. The first failure aborts collection with the
failing QPU id wrapped in the error.
*/
func CollectAll(ctx context.Context, futures []*SampleFuture) ([]*SampleResult, error) {
	results := make([]*SampleResult, 0, len(futures))
	for _, f := range futures {
		res, err := f.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("QPU %d: %w", f.QPU(), err)
		}
		results = append(results, res)
	}
	return results, nil
}
