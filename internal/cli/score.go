package cli

import (
	"fmt"

	"github.com/okian/glyco/internal/domain/measurement"
	"github.com/urfave/cli/v2"
)

// measurementFlags maps each field to its flag. Every flag is required so
// a missing value is never defaulted.
var measurementFlags = map[measurement.Field]*cli.Float64Flag{
	measurement.Pregnancies:              {Name: "pregnancies", Usage: "Number of pregnancies", Required: true},
	measurement.Glucose:                  {Name: "glucose", Usage: "Plasma glucose concentration", Required: true},
	measurement.BloodPressure:            {Name: "blood-pressure", Usage: "Diastolic blood pressure (mm Hg)", Required: true},
	measurement.SkinThickness:            {Name: "skin-thickness", Usage: "Triceps skin fold thickness (mm)", Required: true},
	measurement.Insulin:                  {Name: "insulin", Usage: "2-hour serum insulin (mu U/ml)", Required: true},
	measurement.BMI:                      {Name: "bmi", Usage: "Body mass index", Required: true},
	measurement.DiabetesPedigreeFunction: {Name: "dpf", Aliases: []string{"diabetes-pedigree-function"}, Usage: "Diabetes pedigree function", Required: true},
	measurement.Age:                      {Name: "age", Usage: "Age in years", Required: true},
}

var scoreCmd = &cli.Command{
	Name:    "score",
	Aliases: []string{"s"},
	Usage:   "Score a single measurement",
	Action:  cmdScore,
	Flags:   scoreFlags(),
}

func scoreFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(measurementFlags))
	for _, f := range measurement.Fields() {
		flags = append(flags, measurementFlags[f])
	}
	return flags
}

func cmdScore(c *cli.Context) error {
	cfg := getConfig(c)

	values := make(map[string]float64, len(measurementFlags))
	for f, flag := range measurementFlags {
		if c.IsSet(flag.Name) {
			values[f.String()] = c.Float64(flag.Name)
		}
	}
	m, err := measurement.FromMap(values)
	if err != nil {
		return err
	}

	res, err := cfg.svc.Predict(commandContext(c), m)
	if err != nil {
		return fmt.Errorf("scoring measurement: %w", err)
	}
	return encode(c.App.Writer, cfg.format, res)
}
