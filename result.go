package orca

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

/*
SampleResult is the distribution of measured outcomes returned by one
sampling job. Counts maps an outcome bitstring (one character per output
mode) to the number of shots that produced it.
*/
type SampleResult struct {
	JobID   string
	QPU     int
	Shots   int
	Counts  map[string]int
	Elapsed time.Duration
}

// Dump prints the distribution to stdout, most frequent outcome first,
// ties broken by bitstring.
func (r *SampleResult) Dump() {
	r.Fdump(os.Stdout)
}

// Fdump writes the distribution to w in Dump's format.
func (r *SampleResult) Fdump(w io.Writer) {
	fmt.Fprintf(w, "QPU %d, job %s: %d samples, %d distinct outcomes\n",
		r.QPU, r.JobID, r.Shots, len(r.Counts))
	for _, outcome := range r.sortedOutcomes() {
		fmt.Fprintf(w, "  %s : %d\n", outcome, r.Counts[outcome])
	}
}

// MostProbable returns the outcome with the highest count and that count.
// Ties resolve to the lexicographically smallest bitstring.
func (r *SampleResult) MostProbable() (string, int) {
	outcomes := r.sortedOutcomes()
	if len(outcomes) == 0 {
		return "", 0
	}
	return outcomes[0], r.Counts[outcomes[0]]
}

func (r *SampleResult) sortedOutcomes() []string {
	outcomes := make([]string, 0, len(r.Counts))
	for outcome := range r.Counts {
		outcomes = append(outcomes, outcome)
	}
	sort.Slice(outcomes, func(i, j int) bool {
		ci, cj := r.Counts[outcomes[i]], r.Counts[outcomes[j]]
		if ci != cj {
			return ci > cj
		}
		return outcomes[i] < outcomes[j]
	})
	return outcomes
}
