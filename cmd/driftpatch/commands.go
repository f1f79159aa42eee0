package main

import (
	"time"

	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "driftpatch").
		WithSynopsis("driftpatch [opts] command [opts]").
		WithDescription("driftpatch applies rule catalogues to drifted host objects.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return driftpatchMain(cfg, cc, args)
		}).
		WithSubs(
			CheckCommand(cfg),
			ApplyCommand(cfg),
			SimulateCommand(cfg))
}

func CheckCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CheckConfig{CatalogConfig: &CatalogConfig{MainConfig: mainCfg}}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, cfg.overlayOpt())
	cmd := cli.NewCommand("check").
		WithAliases("c").
		WithSynopsis("check [-overlay file]... catalogue").
		WithDescription("validate and compile a rule catalogue").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return check(cfg, cc, args)
		})
	cfg.Check = cmd
	return cmd
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{
		CatalogConfig: &CatalogConfig{MainConfig: mainCfg},
		Target:        "generator",
		Version:       "v2",
	}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, cfg.overlayOpt())
	cmd := cli.NewCommand("apply").
		WithAliases("a").
		WithSynopsis("apply [-target t] [-version v] [-diff] catalogue").
		WithDescription("apply a catalogue target to a freshly constructed host object").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return apply(cfg, cc, args)
		})
	cfg.Apply = cmd
	return cmd
}

func SimulateCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &SimulateConfig{
		CatalogConfig: &CatalogConfig{MainConfig: mainCfg},
		Target:        "generator",
		Version:       "v2",
		Count:         1,
		LateTicks:     2,
		Interval:      100 * time.Millisecond,
	}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, cfg.overlayOpt(), cfg.intervalOpt())
	cmd := cli.NewCommand("simulate").
		WithAliases("sim").
		WithSynopsis("simulate [-n count] [-late ticks] [-interval d] [-gops] catalogue").
		WithDescription("construct objects on the simulated host and tick until their finalizers are done").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return simulate(cfg, cc, args)
		})
	cfg.Simulate = cmd
	return cmd
}
