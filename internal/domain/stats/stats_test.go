package stats_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/glyco/internal/domain/measurement"
	"github.com/okian/glyco/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

const referenceCSV = `Pregnancies,Glucose,BloodPressure,SkinThickness,Insulin,BMI,DiabetesPedigreeFunction,Age,Outcome
1,100,60,20,0,25,0.2,21,0
2,110,70,30,80,30,0.4,31,0
3,120,80,40,160,35,0.6,41,1
4,130,90,50,240,40,0.8,51,1
`

func TestCompute(t *testing.T) {
	Convey("Given a small reference dataset", t, func() {
		rows, err := stats.ReadCSV(strings.NewReader(referenceCSV))
		So(err, ShouldBeNil)
		So(rows, ShouldHaveLength, 4)

		Convey("When computing the params", func() {
			p, err := stats.Compute(rows)
			So(err, ShouldBeNil)
			So(p.Len(), ShouldEqual, 8)

			Convey("Then the mean is the arithmetic mean", func() {
				mo, ok := p.Get(measurement.Glucose)
				So(ok, ShouldBeTrue)
				So(mo.Mean, ShouldEqual, 115)
			})

			Convey("And the std uses the n-1 divisor", func() {
				mo, _ := p.Get(measurement.Pregnancies)
				So(mo.Mean, ShouldEqual, 2.5)
				So(mo.StdDev, ShouldAlmostEqual, math.Sqrt(5.0/3.0), 1e-12)
			})

			Convey("And every field has moments", func() {
				mo, ok := p.Get(measurement.Age)
				So(ok, ShouldBeTrue)
				So(mo.Mean, ShouldEqual, 36)
			})
		})

		Convey("When only one row is available", func() {
			_, err := stats.Compute(rows[:1])
			So(errors.Is(err, stats.ErrInsufficientData), ShouldBeTrue)
		})
	})
}

func TestReadCSV(t *testing.T) {
	Convey("Given malformed reference data", t, func() {
		Convey("When the file is empty", func() {
			_, err := stats.ReadCSV(strings.NewReader(""))
			So(errors.Is(err, stats.ErrReferenceData), ShouldBeTrue)
		})

		Convey("When a column is missing", func() {
			_, err := stats.ReadCSV(strings.NewReader("Glucose,BMI\n1,2\n"))
			So(errors.Is(err, stats.ErrReferenceData), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Pregnancies")
		})

		Convey("When a cell is not numeric", func() {
			bad := strings.Replace(referenceCSV, "0.4", "n/a", 1)
			_, err := stats.ReadCSV(strings.NewReader(bad))
			So(errors.Is(err, stats.ErrReferenceData), ShouldBeTrue)
			So(errors.Is(err, measurement.ErrNotNumeric), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "line 3")
		})
	})
}

func TestStore(t *testing.T) {
	Convey("Given a store with a counting source", t, func() {
		var calls atomic.Int32
		want := stats.NewParams(map[measurement.Field]stats.Moments{
			measurement.Glucose: {Mean: 120, StdDev: 30},
		})
		store := stats.NewStore(func(context.Context) (stats.Params, error) {
			calls.Add(1)
			return want, nil
		})

		Convey("When many goroutines ask for params at once", func() {
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = store.Get(context.Background())
				}()
			}
			wg.Wait()

			Convey("Then the source runs exactly once", func() {
				So(calls.Load(), ShouldEqual, 1)
				p, err := store.Get(context.Background())
				So(err, ShouldBeNil)
				mo, _ := p.Get(measurement.Glucose)
				So(mo.StdDev, ShouldEqual, 30)
			})
		})
	})

	Convey("Given a store whose source fails", t, func() {
		var calls atomic.Int32
		store := stats.NewStore(func(context.Context) (stats.Params, error) {
			calls.Add(1)
			return stats.Params{}, stats.ErrReferenceData
		})

		Convey("Then the failure is reported on every call without reloading", func() {
			_, err1 := store.Get(context.Background())
			_, err2 := store.Get(context.Background())
			So(errors.Is(err1, stats.ErrReferenceData), ShouldBeTrue)
			So(errors.Is(err2, stats.ErrReferenceData), ShouldBeTrue)
			So(calls.Load(), ShouldEqual, 1)
		})
	})

	Convey("Given a file source", t, func() {
		dir := t.TempDir()

		Convey("When the file exists", func() {
			path := filepath.Join(dir, "train.csv")
			So(os.WriteFile(path, []byte(referenceCSV), 0o600), ShouldBeNil)
			p, err := stats.NewStore(stats.FileSource(path)).Get(context.Background())
			So(err, ShouldBeNil)
			mo, _ := p.Get(measurement.BMI)
			So(mo.Mean, ShouldEqual, 32.5)
		})

		Convey("When the file is missing", func() {
			_, err := stats.NewStore(stats.FileSource(filepath.Join(dir, "nope.csv"))).Get(context.Background())
			So(errors.Is(err, stats.ErrReferenceData), ShouldBeTrue)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})

		Convey("When the first caller's context is already canceled", func() {
			path := filepath.Join(dir, "train.csv")
			So(os.WriteFile(path, []byte(referenceCSV), 0o600), ShouldBeNil)
			store := stats.NewStore(stats.FileSource(path))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			first, err := store.Get(ctx)

			Convey("Then the params still load and later callers get them", func() {
				So(err, ShouldBeNil)
				So(first.Len(), ShouldEqual, 8)

				p, err := store.Get(context.Background())
				So(err, ShouldBeNil)
				mo, _ := p.Get(measurement.BMI)
				So(mo.Mean, ShouldEqual, 32.5)
			})
		})
	})
}
