package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	service "github.com/okian/glyco/internal/app"
	"github.com/okian/glyco/internal/domain/measurement"
	"github.com/okian/glyco/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func screeningRows(n int) []service.Row {
	rows := make([]service.Row, n)
	for i := range rows {
		m := patient()
		if i%2 == 1 {
			m.Glucose = 0
			m.Age = 20
		}
		rows[i] = service.Row{Line: i + 2, Measurement: m}
	}
	return rows
}

func TestService_Screen(t *testing.T) {
	Convey("Given a service with limited screening workers", t, func() {
		svc := newService(service.WithScreeningWorkers(3), service.WithMaxScreenRows(50))
		ctx := context.Background()

		Convey("When screening valid and broken rows", func() {
			rows := screeningRows(10)
			rows[4].Err = fmt.Errorf("%w: Glucose", measurement.ErrNotNumeric)
			rows[7].Measurement.BMI = -3

			got, err := svc.Screen(ctx, rows)

			Convey("Then the run completes with per-row errors", func() {
				So(err, ShouldBeNil)
				So(got.Outcomes, ShouldHaveLength, 10)
				So(got.Summary.Total, ShouldEqual, 10)
				So(got.Summary.Scored, ShouldEqual, 8)
				So(got.Summary.Failed, ShouldEqual, 2)
				So(errors.Is(got.Outcomes[4].Err, measurement.ErrNotNumeric), ShouldBeTrue)
				So(errors.Is(got.Outcomes[7].Err, measurement.ErrOutOfRange), ShouldBeTrue)
			})

			Convey("Then outcomes keep input order", func() {
				for i, o := range got.Outcomes {
					So(o.Row.Line, ShouldEqual, i+2)
				}
			})

			Convey("Then the summary matches single predictions", func() {
				want, err := svc.Predict(ctx, rows[0].Measurement)
				So(err, ShouldBeNil)
				So(got.Outcomes[0].Result, ShouldResemble, want)

				// Even rows are positive, odd rows negative; rows 4 and 7 failed.
				So(got.Summary.Positive, ShouldEqual, 4)
				So(got.Summary.Levels[scoring.LevelMedium], ShouldEqual, 4)
				So(got.Summary.Levels[scoring.LevelLow], ShouldEqual, 4)
				So(got.Summary.Levels[scoring.LevelHigh], ShouldEqual, 0)
				So(got.Summary.Threshold, ShouldEqual, scoring.DefaultThreshold)
				So(got.Summary.ID.String(), ShouldNotBeEmpty)
				So(svc.GetStats()["screenings"], ShouldEqual, int64(1))
			})
		})

		Convey("When screening nothing", func() {
			_, err := svc.Screen(ctx, nil)
			So(errors.Is(err, service.ErrNoRows), ShouldBeTrue)
		})

		Convey("When screening too many rows", func() {
			_, err := svc.Screen(ctx, screeningRows(51))
			So(errors.Is(err, service.ErrTooManyRows), ShouldBeTrue)
		})

		Convey("When the context is canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Screen(cctx, screeningRows(5))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a service without artifacts", t, func() {
		svc := service.New()

		Convey("Then the whole run fails", func() {
			_, err := svc.Screen(context.Background(), screeningRows(2))
			So(errors.Is(err, service.ErrPrediction), ShouldBeTrue)
			So(service.Kind(err), ShouldEqual, service.KindReferenceData)
		})
	})
}
