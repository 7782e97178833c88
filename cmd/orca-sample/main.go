// Command orca-sample runs a time-bin boson sampling experiment on every
// virtual QPU of an ORCA target and prints the resulting distributions.
//
// The target is taken from the ORCA_ACCESS_URL environment variable, a
// comma-separated list of service endpoints, defaulting to
// "http://localhost:3035,http://localhost:3037".
package main

import (
	"context"
	"fmt"

	"github.com/photonq/orca"
	"github.com/sirupsen/logrus"
)

func main() {
	target, err := orca.ResolveTarget()
	if err != nil {
		logrus.Fatal(err)
	}
	defer target.Close()

	qpuCount := target.NumQPUs()
	fmt.Println("Number of virtual QPUs:", qpuCount)

	// A time-bin boson sampling experiment
	inputState := []int{1, 0, 1, 0, 1, 0, 1, 0}
	loopLengths := []int{1, 1}
	exp, err := orca.NewTimeBinExperiment(inputState, loopLengths)
	if err != nil {
		logrus.Fatal(err)
	}
	nSamples := 10000

	ctx := context.Background()
	futures, err := target.SampleAllAsync(ctx, exp, nSamples)
	if err != nil {
		logrus.Fatal(err)
	}

	fmt.Println("Sampling jobs launched for asynchronous processing.")

	for _, f := range futures {
		counts, err := f.Get(ctx)
		if err != nil {
			logrus.Fatal(err)
		}
		counts.Dump()
	}
}
