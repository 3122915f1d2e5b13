// SPDX-License-Identifier: MIT
package sweep_test

import (
	"context"
	"errors"
	"testing"

	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/problem"
	"github.com/katalvlaran/qoc/sweep"
	. "github.com/smartystreets/goconvey/convey"
)

func shortGrid() []sweep.Job {
	jobs, err := sweep.DampingGrid([]float64{0, 0.05}, []int64{1, 2})
	So(err, ShouldBeNil)
	for _, j := range jobs {
		j.Problem.Optimizer.MaxIterations = 15
		j.Problem.Optimizer.MaxWallTime = 0
	}

	return jobs
}

func TestSweep(t *testing.T) {
	Convey("Given a damping grid of four jobs", t, func() {
		jobs := shortGrid()
		So(jobs, ShouldHaveLength, 4)
		So(jobs[0].Name, ShouldEqual, "gamma=0 seed=1")
		So(jobs[3].Name, ShouldEqual, "gamma=0.05 seed=2")

		Convey("Running on two workers returns outcomes in job order", func() {
			outs, err := sweep.Run(context.Background(), jobs, sweep.WithWorkers(2))
			So(err, ShouldBeNil)
			So(outs, ShouldHaveLength, 4)
			for i, o := range outs {
				So(o.Index, ShouldEqual, i)
				So(o.Job, ShouldEqual, jobs[i].Name)
				So(o.Err, ShouldBeNil)
				So(o.Result, ShouldNotBeNil)
				So(o.Result.FinalError, ShouldBeLessThanOrEqualTo, o.Result.InitialError)
			}

			sum := sweep.Summarize(outs)
			So(sum.Jobs, ShouldEqual, 4)
			So(sum.Errors, ShouldEqual, 0)
			So(sweep.Best(outs), ShouldBeBetweenOrEqual, 0, 3)

			Convey("And a sequential rerun reproduces every final error", func() {
				seq, err := sweep.Run(context.Background(), shortGrid(), sweep.WithWorkers(1))
				So(err, ShouldBeNil)
				for i := range seq {
					So(seq[i].Result.FinalError, ShouldEqual, outs[i].Result.FinalError)
					So(seq[i].Result.State, ShouldEqual, outs[i].Result.State)
				}
			})
		})

		Convey("A cancelled context starts nothing", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			outs, err := sweep.Run(ctx, jobs)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			for _, o := range outs {
				So(o.Result, ShouldBeNil)
				So(errors.Is(o.Err, context.Canceled), ShouldBeTrue)
			}
			So(sweep.Best(outs), ShouldEqual, -1)
			So(sweep.Summarize(outs).Errors, ShouldEqual, 4)
		})
	})
}

func TestSweepSetupErrors(t *testing.T) {
	Convey("Given jobs with setup problems", t, func() {
		trivial, err := problem.TrivialIdentity()
		So(err, ShouldBeNil)
		jobs := []sweep.Job{
			{Name: "missing"},
			{Problem: trivial},
			{Name: "bad table", Problem: trivial, Initial: [][]float64{{1, 2, 3}}},
		}

		Convey("Each failure stays on its own outcome", func() {
			outs, err := sweep.Run(context.Background(), jobs)
			So(err, ShouldBeNil)
			So(errors.Is(outs[0].Err, problem.ErrInvalidSpec), ShouldBeTrue)
			So(outs[1].Job, ShouldEqual, problem.PresetTrivialIdentity+"#1")
			So(outs[1].Err, ShouldBeNil)
			So(outs[1].Result.State, ShouldEqual, optimize.Converged)
			So(outs[2].Err, ShouldNotBeNil)
			So(sweep.Summarize(outs).States[optimize.Converged], ShouldEqual, 1)
		})

		Convey("An empty job list is rejected", func() {
			_, err := sweep.Run(context.Background(), nil)
			So(err, ShouldEqual, sweep.ErrNoJobs)
		})
	})
}
