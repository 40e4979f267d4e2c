// Package cli implements glycoctl, the command line front end of the
// predictor.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	service "github.com/okian/glyco/internal/app"
	"github.com/okian/glyco/internal/config"
	"github.com/okian/glyco/pkg/logger"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	configFlag = &urfave.StringFlag{
		Name:    "config",
		Usage:   "Path to the YAML config file",
		EnvVars: []string{config.EnvConfig},
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

type appConfig struct {
	cfg    *config.Config
	svc    *service.Service
	format string
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 "glycoctl",
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Score diabetes risk from clinical measurements",
		Metadata:             map[string]interface{}{},
		Flags: []urfave.Flag{
			debugFlag,
			configFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			scoreCmd,
			screenCmd,
			oddsCmd,
		},
		Before: func(c *urfave.Context) error {
			cfg, err := config.LoadFile(c.Context, c.String(configFlag.Name))
			if err != nil {
				return err
			}

			if err := logger.Init(logger.Options{Format: cfg.LogFormat, Writer: c.App.ErrWriter}); err != nil {
				return err
			}
			level := cfg.LogLevel
			if c.Bool(debugFlag.Name) {
				level = "debug"
			}
			if err := logger.SetLevelString(level); err != nil {
				return err
			}

			svc, err := service.FromConfig(cfg, service.WithLogger(logger.Named("glycoctl")))
			if err != nil {
				return err
			}

			format := formatJSON
			switch f := c.String(formatFlag.Name); f {
			case formatJSON:
			case formatYAML, "yml":
				format = formatYAML
			default:
				return fmt.Errorf("unknown output format: %s", f)
			}

			c.App.Metadata[appConfigKey] = &appConfig{cfg: cfg, svc: svc, format: format}
			return nil
		},
	}
}

func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		return yaml.NewEncoder(w).Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

func commandContext(c *urfave.Context) context.Context {
	if c.Context != nil {
		return c.Context
	}
	return context.Background()
}
