package orca

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSampleAllAsync(t *testing.T) {
	Convey("Given a target with two virtual QPUs", t, func() {
		// QPU 0 is deliberately slow so QPU 1 finishes first.
		slow := newFakeService(300 * time.Millisecond)
		fast := newFakeService(0)
		target, err := NewTarget(slow.URL()+","+fast.URL(), WithConfig(testConfig()))
		So(err, ShouldBeNil)

		exp, err := NewTimeBinExperiment([]int{1, 0, 1, 0, 1, 0, 1, 0}, []int{1, 1})
		So(err, ShouldBeNil)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		Reset(func() {
			cancel()
			target.Close()
			slow.Close()
			fast.Close()
		})

		Convey("When fanning out a sampling job", func() {
			futures, err := target.SampleAllAsync(ctx, exp, 10000)
			So(err, ShouldBeNil)

			Convey("One job is submitted per QPU, in id order", func() {
				So(len(futures), ShouldEqual, 2)
				So(futures[0].QPU(), ShouldEqual, 0)
				So(futures[1].QPU(), ShouldEqual, 1)
				So(slow.Submits(), ShouldEqual, 1)
				So(fast.Submits(), ShouldEqual, 1)
			})

			Convey("CollectAll returns results in submission order despite reversed completion", func() {
				results, err := CollectAll(ctx, futures)
				So(err, ShouldBeNil)
				So(len(results), ShouldEqual, 2)
				So(results[0].QPU, ShouldEqual, 0)
				So(results[1].QPU, ShouldEqual, 1)
			})
		})

		Convey("When a submission fails partway through the fan-out", func() {
			fast.failSubmits = 10

			_, err := target.SampleAllAsync(ctx, exp, 100,
				WithRetry(1, &ExponentialBackoff{Initial: time.Millisecond}))

			Convey("The error names the failing QPU and launched jobs are canceled", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "QPU 1")
				So(slow.Cancels(), ShouldEqual, 1)
			})
		})
	})
}

func TestSampleAllAsyncNoQPUs(t *testing.T) {
	Convey("Given a target exposing zero QPUs", t, func() {
		target := &Target{}

		Convey("The fan-out submits nothing and collection is empty", func() {
			futures, err := target.SampleAllAsync(context.Background(), nil, 100)
			So(err, ShouldBeNil)
			So(futures, ShouldBeEmpty)

			results, err := CollectAll(context.Background(), futures)
			So(err, ShouldBeNil)
			So(results, ShouldBeEmpty)
		})
	})
}
