package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scott-cotton/cli"
	"github.com/signadot/driftpatch/gen"
)

func main() {
	cli.MainContext(context.Background(), MainCommand())
}

func MainCommand() *cli.Command {
	cfg := &Config{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Gen, "driftpatch-gen").
		WithSynopsis("driftpatch-gen [opts]").
		WithDescription("Generate explicit member tables so member resolution can run without reflection.").
		WithOpts(sOpts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return run(cfg, cc, args)
		})
}

type Config struct {
	Dir    string `cli:"name=dir desc='package directory (default: current directory)'"`
	Types  string `cli:"name=types desc='comma separated struct types (default: all struct types)'"`
	Output string `cli:"name=o desc='output file (default: members_gen.go in the package directory)'"`
	Func   string `cli:"name=func desc='name of the generated registration function (default: RegisterMembers)'"`
	Stdout bool   `cli:"name=stdout desc='write to standard output instead of a file'"`

	Gen *cli.Command
}

func run(cfg *Config, cc *cli.Context, args []string) error {
	args, err := cfg.Gen.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 0 {
		return fmt.Errorf("%w: unexpected arguments %v", cli.ErrUsage, args)
	}
	dir := cfg.Dir
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
	}
	var types []string
	for _, t := range strings.Split(cfg.Types, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	res, err := gen.Generate(&gen.Config{Dir: dir, Types: types, Func: cfg.Func})
	if err != nil {
		return err
	}
	for _, m := range res.Models {
		if len(m.Skipped) > 0 {
			fmt.Fprintf(os.Stderr, "%s: skipped %s\n", m.Name, strings.Join(m.Skipped, ", "))
		}
	}
	if cfg.Stdout {
		_, err := cc.Out.Write(res.Source)
		return err
	}
	out := cfg.Output
	if out == "" {
		out = "members_gen.go"
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	if err := os.WriteFile(out, res.Source, 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", out, err)
	}
	return nil
}
