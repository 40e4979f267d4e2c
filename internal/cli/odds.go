package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var oddsCmd = &cli.Command{
	Name:   "odds",
	Usage:  "Print the model's odds ratio per feature",
	Action: cmdOdds,
}

type oddsOutput struct {
	Threshold  float64            `json:"threshold" yaml:"threshold"`
	OddsRatios map[string]float64 `json:"odds_ratios" yaml:"odds_ratios"`
}

func cmdOdds(c *cli.Context) error {
	cfg := getConfig(c)

	odds, err := cfg.svc.OddsRatios(commandContext(c))
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	return encode(c.App.Writer, cfg.format, oddsOutput{
		Threshold:  cfg.svc.Threshold(),
		OddsRatios: odds,
	})
}
