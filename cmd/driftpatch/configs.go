package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/signadot/driftpatch/catalog"
	"github.com/signadot/driftpatch/snapdiff"
)

// EnvConfig holds defaults taken from the environment.
type EnvConfig struct {
	LogLevel string `env:"DRIFTPATCH_LOG_LEVEL" envDefault:"warn"`
	// Color is auto, always or never.
	Color string `env:"DRIFTPATCH_COLOR" envDefault:"auto"`
}

func parseEnv() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (e *EnvConfig) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return 0, fmt.Errorf("DRIFTPATCH_LOG_LEVEL: %w", err)
	}
	return l, nil
}

type MainConfig struct {
	Verbose bool `cli:"name=v desc='log at debug level'"`
	Color   bool `cli:"name=color desc='color output regardless of the terminal'"`
	NoColor bool `cli:"name=no-color desc='never color output'"`

	Env *EnvConfig
	Log *slog.Logger

	Main *cli.Command
}

// setup resolves the environment and logger after option parsing.
func (cfg *MainConfig) setup(stderr io.Writer) error {
	if cfg.Color && cfg.NoColor {
		return fmt.Errorf("%w: -color and -no-color are exclusive", cli.ErrUsage)
	}
	e, err := parseEnv()
	if err != nil {
		return err
	}
	cfg.Env = e
	level, err := e.level()
	if err != nil {
		return err
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	cfg.Log = newLog(stderr, level)
	return nil
}

func (cfg *MainConfig) logger() *slog.Logger {
	if cfg.Log == nil {
		return slog.Default()
	}
	return cfg.Log
}

// colors decides whether output to w is colored. Flags win over
// DRIFTPATCH_COLOR, which wins over terminal detection.
func (cfg *MainConfig) colors(w io.Writer) *snapdiff.Colors {
	switch {
	case cfg.Color:
		return snapdiff.NewColors()
	case cfg.NoColor:
		return nil
	}
	mode := "auto"
	if cfg.Env != nil {
		mode = strings.ToLower(cfg.Env.Color)
	}
	switch mode {
	case "always":
		return snapdiff.NewColors()
	case "never":
		return nil
	}
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	if isatty.IsTerminal(f.Fd()) {
		return snapdiff.NewColors()
	}
	return nil
}

// CatalogConfig is shared by commands reading a catalogue.
type CatalogConfig struct {
	*MainConfig
	Overlays []string
}

func (cfg *CatalogConfig) overlayOpt() *cli.Opt {
	return &cli.Opt{
		Name:        "overlay",
		Description: "JSON patch applied to the catalogue, may be repeated",
		Type: cli.NamedFuncOpt(cli.FuncOpt(func(_ *cli.Context, a string) (any, error) {
			cfg.Overlays = append(cfg.Overlays, a)
			return a, nil
		}), "(file)"),
	}
}

func (cfg *CatalogConfig) load(args []string) (*catalog.Catalog, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected one catalogue file", cli.ErrUsage)
	}
	return catalog.LoadFile(args[0], cfg.Overlays...)
}

type CheckConfig struct {
	*CatalogConfig

	Check *cli.Command
}

type ApplyConfig struct {
	*CatalogConfig
	Target    string `cli:"name=target desc='catalogue target'"`
	Version   string `cli:"name=version desc='host version of the constructed object'"`
	Diff      bool   `cli:"name=diff desc='show member values before and after'"`
	Strict    bool   `cli:"name=strict desc='fail when any rule is skipped'"`
	Generated bool   `cli:"name=generated desc='resolve through generated member tables only'"`

	Apply *cli.Command
}

type SimulateConfig struct {
	*CatalogConfig
	Target    string `cli:"name=target desc='catalogue target'"`
	Version   string `cli:"name=version desc='host version of the constructed objects'"`
	Count     int    `cli:"name=n desc='number of objects to construct'"`
	LateTicks int    `cli:"name=late desc='ticks the host keeps resetting critical members'"`
	Gops      bool   `cli:"name=gops desc='start a gops diagnostics agent'"`
	Generated bool   `cli:"name=generated desc='resolve through generated member tables only'"`
	Interval  time.Duration

	Simulate *cli.Command
}

func (cfg *SimulateConfig) intervalOpt() *cli.Opt {
	return &cli.Opt{
		Name:        "interval",
		Description: "time between ticks",
		Type: cli.NamedFuncOpt(cli.FuncOpt(func(_ *cli.Context, a string) (any, error) {
			d, err := time.ParseDuration(a)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
			}
			cfg.Interval = d
			return d, nil
		}), "(duration)"),
	}
}
