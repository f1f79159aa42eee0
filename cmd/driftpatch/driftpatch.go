package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/gops/agent"
	"github.com/scott-cotton/cli"
	"github.com/signadot/driftpatch/catalog"
	"github.com/signadot/driftpatch/member"
	"github.com/signadot/driftpatch/patch"
	"github.com/signadot/driftpatch/sim"
	"github.com/signadot/driftpatch/snapdiff"
)

func driftpatchMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if err := cfg.setup(os.Stderr); err != nil {
		return err
	}
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func check(cfg *CheckConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Check.Parse(cc, args)
	if err != nil {
		return err
	}
	cat, err := cfg.load(args)
	if err != nil {
		return err
	}
	return checkCatalog(cc.Out, cat)
}

func checkCatalog(w io.Writer, cat *catalog.Catalog) error {
	plans, err := cat.Compile(sim.Types())
	if err != nil {
		return err
	}
	for _, name := range cat.TargetNames() {
		p := plans[name]
		fmt.Fprintf(w, "%s: %d rules, %d critical, %d attempts\n", name, len(p.Batch), len(p.Critical), p.Attempts)
	}
	return nil
}

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		return err
	}
	cat, err := cfg.load(args)
	if err != nil {
		return err
	}
	return applyCatalog(cfg, cc.Out, cat)
}

func applyCatalog(cfg *ApplyConfig, w io.Writer, cat *catalog.Catalog) error {
	plan, err := cat.CompileTarget(cfg.Target, sim.Types())
	if err != nil {
		return err
	}
	target, err := sim.New(cfg.Version)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	orch := newOrchestrator(cfg.MainConfig, cfg.Generated)
	colors := cfg.colors(w)
	fields := snapdiff.FieldsOf(plan.Batch)
	before := snapdiff.Take(orch, target, fields)
	rep := orch.Apply(target, plan.Batch)
	if cfg.Diff {
		if err := snapdiff.Render(w, before, snapdiff.Take(orch, target, fields), colors); err != nil {
			return err
		}
	}
	if err := snapdiff.RenderReport(w, rep, colors); err != nil {
		return err
	}
	if cfg.Strict && !rep.OK() {
		return fmt.Errorf("%s: %d rules skipped: %w", cfg.Target, rep.Skipped, rep.Err())
	}
	return nil
}

func newOrchestrator(cfg *MainConfig, generated bool) *patch.Orchestrator {
	spec := &patch.Spec{Log: cfg.logger()}
	if generated {
		spec.Resolver = member.NewResolver(member.WithoutReflection())
		sim.RegisterMembers(spec.Resolver)
	}
	return patch.New(spec)
}

func simulate(cfg *SimulateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Simulate.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			fmt.Fprintf(cc.Out, "gops agent failed: %v\n", err)
		} else {
			defer agent.Close()
		}
	}
	cat, err := cfg.load(args)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return simulateCatalog(ctx, cfg, cc.Out, cat)
}

func simulateCatalog(ctx context.Context, cfg *SimulateConfig, w io.Writer, cat *catalog.Catalog) error {
	if cfg.Count < 1 {
		return fmt.Errorf("%w: -n must be positive", cli.ErrUsage)
	}
	orch := newOrchestrator(cfg.MainConfig, cfg.Generated)
	plan, err := cat.CompileTarget(cfg.Target, sim.Types())
	if err != nil {
		return err
	}
	late, err := resetCritical(orch, cfg.Version, plan, cfg.LateTicks)
	if err != nil {
		return err
	}
	host, err := sim.NewHost(&sim.Spec{
		Catalog:      cat,
		Version:      cfg.Version,
		LateInit:     late,
		Orchestrator: orch,
		Log:          cfg.logger(),
	})
	if err != nil {
		return err
	}
	for i := range cfg.Count {
		if _, err := host.Construct(cfg.Target, fmt.Sprintf("%s-%d", cfg.Target, i)); err != nil {
			return err
		}
	}
	if err := host.Run(ctx, cfg.Interval); err != nil {
		return err
	}
	colors := cfg.colors(w)
	fields := snapdiff.FieldsOf(plan.Critical)
	for _, obj := range host.Objects() {
		fmt.Fprintf(w, "%s: finalizer %s after %d applications, %d ticks\n",
			colors.Color(snapdiff.LabelColor, obj.Key), obj.Finalizer.State(), obj.Finalizer.Applications(), host.Ticks())
		pristine, err := sim.New(cfg.Version)
		if err != nil {
			return err
		}
		if err := snapdiff.Render(w, snapdiff.Take(orch, pristine, fields), snapdiff.Take(orch, obj.Target, fields), colors); err != nil {
			return err
		}
	}
	return nil
}

// resetCritical builds host initialization steps writing each critical
// member back to its constructor value for ticks ticks.
func resetCritical(orch *patch.Orchestrator, version string, plan *catalog.Plan, ticks int) ([]sim.Overwrite, error) {
	if ticks <= 0 {
		return nil, nil
	}
	pristine, err := sim.New(version)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	var res []sim.Overwrite
	for _, rule := range plan.Critical {
		h, err := orch.Resolve(pristine, rule.Aliases)
		if err != nil || !h.CanGet() {
			continue
		}
		v, err := h.Get(pristine)
		if err != nil {
			return nil, err
		}
		res = append(res, sim.Overwrite{Aliases: rule.Aliases, Value: v, Ticks: ticks})
	}
	return res, nil
}
