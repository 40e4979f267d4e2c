package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/glyco/internal/adapters/batch"
	service "github.com/okian/glyco/internal/app"
	"github.com/urfave/cli/v2"
)

var (
	inputFlag = &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Screening CSV to score, - for stdin",
		Required: true,
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the CSV report to this path (optional, default: print rows)",
	}

	screenCmd = &cli.Command{
		Name:   "screen",
		Usage:  "Score every row of a CSV file",
		Action: cmdScreen,
		Flags: []cli.Flag{
			inputFlag,
			outputFlag,
		},
	}
)

type screenRow struct {
	Line   int             `json:"line" yaml:"line"`
	Result *service.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type screenOutput struct {
	Summary service.Summary `json:"summary" yaml:"summary"`
	Report  string          `json:"report,omitempty" yaml:"report,omitempty"`
	Rows    []screenRow     `json:"rows,omitempty" yaml:"rows,omitempty"`
}

func cmdScreen(c *cli.Context) error {
	cfg := getConfig(c)

	rows, err := readInput(c.String(inputFlag.Name), c.App.Reader)
	if err != nil {
		return err
	}
	screening, err := cfg.svc.Screen(commandContext(c), rows)
	if err != nil {
		return fmt.Errorf("screening: %w", err)
	}

	out := screenOutput{Summary: screening.Summary}
	if path := c.String(outputFlag.Name); path != "" {
		if err := writeReport(path, screening.Outcomes); err != nil {
			return err
		}
		out.Report = path
		return encode(c.App.Writer, cfg.format, out)
	}

	out.Rows = make([]screenRow, len(screening.Outcomes))
	for i, o := range screening.Outcomes {
		out.Rows[i].Line = o.Row.Line
		if o.Err != nil {
			out.Rows[i].Error = o.Err.Error()
			continue
		}
		res := o.Result
		out.Rows[i].Result = &res
	}
	return encode(c.App.Writer, cfg.format, out)
}

func readInput(path string, stdin io.Reader) ([]service.Row, error) {
	if path == "-" {
		return batch.ReadMeasurements(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer func() { _ = f.Close() }()
	return batch.ReadMeasurements(f)
}

func writeReport(path string, outcomes []service.Outcome) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing report: %w", cerr)
		}
	}()
	return batch.WriteReport(f, outcomes)
}
