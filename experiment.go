package orca

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidExperiment is returned when the experiment parameters do not
// describe a realizable time-bin interferometer.
var ErrInvalidExperiment = errors.New("invalid experiment")

/*
Experiment describes a time-bin boson sampling experiment: the photon
occupations entering the interferometer, the loop-length schedule, and the
beam-splitter phase angles.

The angle count is fixed by the topology: for an input state of length L
and K loops, the interferometer contains K*L - sum(loopLengths) beam
splitters.
*/
type Experiment struct {
	InputState  []int
	LoopLengths []int
	BSAngles    []float64
}

// NumBeamSplitters returns the number of beam splitters in a time-bin
// interferometer with the given input length and loop-length schedule.
// The result is negative when the loops are longer than the input can
// thread, which no experiment can realize.
func NumBeamSplitters(inputLen int, loopLengths []int) int {
	total := 0
	for _, l := range loopLengths {
		total += l
	}
	return len(loopLengths)*inputLen - total
}

// Linspace returns n evenly spaced values from start to stop inclusive.
// n == 1 yields just start; n <= 0 yields an empty slice.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

/*
NewTimeBinExperiment builds an experiment from an input occupation vector
and a loop-length schedule, assigning beam-splitter angles evenly spaced
from pi/3 down to pi/6.
*/
func NewTimeBinExperiment(inputState []int, loopLengths []int) (*Experiment, error) {
	exp := &Experiment{
		InputState:  inputState,
		LoopLengths: loopLengths,
	}
	nbs := NumBeamSplitters(len(inputState), loopLengths)
	if nbs < 0 {
		return nil, fmt.Errorf("%w: %d loops over %d input modes leave %d beam splitters",
			ErrInvalidExperiment, len(loopLengths), len(inputState), nbs)
	}
	exp.BSAngles = Linspace(math.Pi/3, math.Pi/6, nbs)
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	return exp, nil
}

// Validate checks the structural invariants of the experiment.
func (e *Experiment) Validate() error {
	if len(e.InputState) == 0 {
		return fmt.Errorf("%w: empty input state", ErrInvalidExperiment)
	}
	for i, occ := range e.InputState {
		if occ != 0 && occ != 1 {
			return fmt.Errorf("%w: input state occupation %d at mode %d is not binary",
				ErrInvalidExperiment, occ, i)
		}
	}
	if len(e.LoopLengths) == 0 {
		return fmt.Errorf("%w: no loop lengths", ErrInvalidExperiment)
	}
	for i, l := range e.LoopLengths {
		if l < 1 {
			return fmt.Errorf("%w: loop length %d at index %d must be >= 1",
				ErrInvalidExperiment, l, i)
		}
	}
	nbs := NumBeamSplitters(len(e.InputState), e.LoopLengths)
	if nbs < 0 {
		return fmt.Errorf("%w: negative beam splitter count %d", ErrInvalidExperiment, nbs)
	}
	if len(e.BSAngles) != nbs {
		return fmt.Errorf("%w: have %d beam splitter angles, topology requires %d",
			ErrInvalidExperiment, len(e.BSAngles), nbs)
	}
	return nil
}

// Photons returns the total number of photons in the input state.
func (e *Experiment) Photons() int {
	n := 0
	for _, occ := range e.InputState {
		n += occ
	}
	return n
}
