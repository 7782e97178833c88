package orca

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNumBeamSplitters(t *testing.T) {
	Convey("Given input states and loop-length schedules", t, func() {
		Convey("The reference topology yields 14 beam splitters", func() {
			So(NumBeamSplitters(8, []int{1, 1}), ShouldEqual, 14)
		})

		Convey("The formula is K*L - sum(loops)", func() {
			So(NumBeamSplitters(4, []int{1, 2, 3}), ShouldEqual, 3*4-6)
			So(NumBeamSplitters(2, []int{1}), ShouldEqual, 1)
		})

		Convey("Loops longer than the input go negative", func() {
			So(NumBeamSplitters(2, []int{5}), ShouldBeLessThan, 0)
		})
	})
}

func TestLinspace(t *testing.T) {
	Convey("Given a linear spacing request", t, func() {
		Convey("Both endpoints are included", func() {
			vals := Linspace(math.Pi/3, math.Pi/6, 14)
			So(len(vals), ShouldEqual, 14)
			So(vals[0], ShouldEqual, math.Pi/3)
			So(vals[13], ShouldEqual, math.Pi/6)
		})

		Convey("Values are strictly decreasing and evenly spaced", func() {
			vals := Linspace(math.Pi/3, math.Pi/6, 14)
			step := vals[1] - vals[0]
			for i := 1; i < len(vals); i++ {
				So(vals[i], ShouldBeLessThan, vals[i-1])
				So(vals[i]-vals[i-1], ShouldAlmostEqual, step, 1e-12)
			}
		})

		Convey("A single element is the start value", func() {
			So(Linspace(1.0, 2.0, 1), ShouldResemble, []float64{1.0})
		})

		Convey("Zero or negative counts yield nothing", func() {
			So(Linspace(1.0, 2.0, 0), ShouldBeEmpty)
			So(Linspace(1.0, 2.0, -3), ShouldBeEmpty)
		})
	})
}

func TestNewTimeBinExperiment(t *testing.T) {
	Convey("Given the reference input state and loop lengths", t, func() {
		exp, err := NewTimeBinExperiment([]int{1, 0, 1, 0, 1, 0, 1, 0}, []int{1, 1})
		So(err, ShouldBeNil)

		Convey("The angle schedule matches the topology", func() {
			So(len(exp.BSAngles), ShouldEqual, 14)
			So(exp.BSAngles[0], ShouldEqual, math.Pi/3)
			So(exp.BSAngles[13], ShouldEqual, math.Pi/6)
		})

		Convey("The experiment validates", func() {
			So(exp.Validate(), ShouldBeNil)
		})

		Convey("Photons counts the occupied modes", func() {
			So(exp.Photons(), ShouldEqual, 4)
		})
	})

	Convey("Given parameters with a negative beam splitter count", t, func() {
		_, err := NewTimeBinExperiment([]int{1, 0}, []int{5})

		Convey("Construction is rejected", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid experiment")
		})
	})

	Convey("Given malformed parameters", t, func() {
		Convey("Non-binary occupations are rejected", func() {
			_, err := NewTimeBinExperiment([]int{1, 2, 0}, []int{1})
			So(err, ShouldNotBeNil)
		})

		Convey("An empty input state is rejected", func() {
			_, err := NewTimeBinExperiment(nil, []int{1})
			So(err, ShouldNotBeNil)
		})

		Convey("A zero loop length is rejected", func() {
			_, err := NewTimeBinExperiment([]int{1, 0}, []int{0})
			So(err, ShouldNotBeNil)
		})
	})
}
