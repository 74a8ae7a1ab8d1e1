package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/grandjury/grandjury-go/pkg/config"
	"github.com/grandjury/grandjury-go/pkg/logging"
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

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	baseURLFlag = &urfave.StringFlag{
		Name:  "base-url",
		Usage: "GrandJury server base URL (optional, overrides config)",
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(false)

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Conf  *config.Config
	Debug bool
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 "grandjury",
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "CLI for GrandJury vote aggregation and decay-adjusted scoring",
		Flags: []urfave.Flag{
			debugFlag,
			formatFlag,
			baseURLFlag,
		},
		Commands: []*urfave.Command{
			authCmd,
			verdictCmd,
			scoreCmd,
			evaluateCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				initLogging(true)
			}

			f := c.String(formatFlag.Name)
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			conf, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if u := c.String(baseURLFlag.Name); u != "" {
				conf.BaseURL = u
			}

			if err := conf.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Conf:  conf,
				Debug: c.Bool(debugFlag.Name),
			}
			return nil
		},
	}
}

func initLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := logging.NewCLIHandler(os.Stderr, level)
	slog.SetDefault(slog.New(h))
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
