package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

const referenceCSV = `Pregnancies,Glucose,BloodPressure,SkinThickness,Insulin,BMI,DiabetesPedigreeFunction,Age,Outcome
6,148,72,35,0,33.6,0.627,50,1
1,85,66,29,0,26.6,0.351,31,0
8,183,64,0,0,23.3,0.672,32,1
1,89,66,23,94,28.1,0.167,21,0
`

const modelJSON = `{
  "model_type": "logistic_regression",
  "version": "fixture",
  "features": ["Glucose", "BMI", "Age_category_older"],
  "coefficients": [1.2, 0.5, -0.3],
  "intercept": -0.8,
  "threshold": 0.45
}`

// fixture writes the artifacts and a config file into a temp dir and
// returns the config path.
func fixture(t *testing.T) (string, string) {
	dir := t.TempDir()
	data := filepath.Join(dir, "train.csv")
	model := filepath.Join(dir, "model.json")
	cfg := filepath.Join(dir, "glyco.yaml")
	So(os.WriteFile(data, []byte(referenceCSV), 0o600), ShouldBeNil)
	So(os.WriteFile(model, []byte(modelJSON), 0o600), ShouldBeNil)
	So(os.WriteFile(cfg, []byte("reference_data_path: "+data+"\nmodel_path: "+model+"\n"), 0o600), ShouldBeNil)
	return dir, cfg
}

func run(stdin io.Reader, args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = stdin
	err := app.Run(append([]string{"glycoctl"}, args...))
	return out.String(), err
}

var scoreArgs = []string{
	"score", "--pregnancies", "6", "--glucose", "148", "--blood-pressure", "72",
	"--skin-thickness", "35", "--insulin", "0", "--bmi", "33.6", "--dpf", "0.627", "--age", "50",
}

func TestScoreCommand(t *testing.T) {
	Convey("Given artifacts and a config file", t, func() {
		_, cfg := fixture(t)

		Convey("When scoring a complete measurement", func() {
			out, err := run(nil, append([]string{"--config", cfg}, scoreArgs...)...)

			Convey("Then the result is printed as JSON", func() {
				So(err, ShouldBeNil)
				var res map[string]interface{}
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res["positive"], ShouldEqual, true)
				So(res["risk_level"], ShouldNotBeEmpty)
				So(res["odds_ratios"], ShouldContainKey, "BMI")
			})
		})

		Convey("When asking for YAML", func() {
			out, err := run(nil, append([]string{"--config", cfg, "--format", "yaml"}, scoreArgs...)...)

			Convey("Then the result is printed as YAML", func() {
				So(err, ShouldBeNil)
				var res map[string]interface{}
				So(yaml.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res, ShouldContainKey, "score")
				So(res, ShouldContainKey, "risk_level")
			})
		})

		Convey("When a measurement flag is missing", func() {
			_, err := run(nil, "--config", cfg, "score", "--glucose", "148")
			So(err, ShouldNotBeNil)
		})

		Convey("When a value is negative", func() {
			args := append([]string{"--config", cfg}, scoreArgs...)
			args[len(args)-1] = "-1"
			_, err := run(nil, args...)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "out of range")
		})

		Convey("When the format is unknown", func() {
			_, err := run(nil, append([]string{"--config", cfg, "--format", "xml"}, scoreArgs...)...)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestScreenCommand(t *testing.T) {
	Convey("Given artifacts and a screening file", t, func() {
		dir, cfg := fixture(t)
		input := filepath.Join(dir, "screen.csv")
		So(os.WriteFile(input, []byte(referenceCSV+"2,bad,70,20,0,30,0.5,40,0\n"), 0o600), ShouldBeNil)

		Convey("When screening to stdout", func() {
			out, err := run(nil, "--config", cfg, "screen", "--input", input)

			Convey("Then every row is printed", func() {
				So(err, ShouldBeNil)
				var res screenOutput
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res.Summary.Total, ShouldEqual, 5)
				So(res.Summary.Scored, ShouldEqual, 4)
				So(res.Summary.Failed, ShouldEqual, 1)
				So(res.Rows, ShouldHaveLength, 5)
				So(res.Rows[4].Error, ShouldContainSubstring, "line 6")
			})
		})

		Convey("When screening stdin into a report file", func() {
			report := filepath.Join(dir, "report.csv")
			out, err := run(strings.NewReader(referenceCSV), "--config", cfg, "screen", "--input", "-", "--output", report)

			Convey("Then the report is written and the summary printed", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, report)

				f, err := os.Open(report)
				So(err, ShouldBeNil)
				defer f.Close()
				records, err := csv.NewReader(f).ReadAll()
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 5)
				So(records[1][0], ShouldEqual, "2")
			})
		})

		Convey("When the input does not exist", func() {
			_, err := run(nil, "--config", cfg, "screen", "--input", filepath.Join(dir, "nope.csv"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestOddsCommand(t *testing.T) {
	Convey("Given artifacts and a config file", t, func() {
		_, cfg := fixture(t)

		Convey("When printing odds ratios", func() {
			out, err := run(nil, "--config", cfg, "odds")

			Convey("Then every model feature is listed", func() {
				So(err, ShouldBeNil)
				var res oddsOutput
				So(json.Unmarshal([]byte(out), &res), ShouldBeNil)
				So(res.Threshold, ShouldEqual, 0.45)
				So(res.OddsRatios, ShouldHaveLength, 3)
			})
		})

		Convey("When the model path is wrong", func() {
			dir := t.TempDir()
			bad := filepath.Join(dir, "bad.yaml")
			So(os.WriteFile(bad, []byte("model_path: "+filepath.Join(dir, "missing.json")+"\n"), 0o600), ShouldBeNil)
			_, err := run(nil, "--config", bad, "odds")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "model")
		})
	})
}
