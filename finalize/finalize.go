// Package finalize reasserts critical patches on a freshly constructed
// target for a bounded number of scheduler ticks.
//
// Hosts commonly run more initialization after an object is built, and some
// of it overwrites what a patch just set. Arm applies the critical batch
// once immediately and then once per tick for a fixed number of ticks:
//
//	Arm -> apply -> Armed(n) -tick-> apply -> Armed(n-1) ... -tick-> apply -> Done
//
// With attempts=2 the batch runs exactly three times. On reaching Done the
// finalizer asks its scheduler to drop it. A scheduler that refuses is
// logged and otherwise ignored: a leaked task in state Done does nothing.
// A finalizer has no cancel method; it ends only by exhausting its attempts.
package finalize

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/signadot/driftpatch/debug"
	"github.com/signadot/driftpatch/patch"
)

// DefaultAttempts is the number of scheduled reapplications after the
// immediate one.
const DefaultAttempts = 2

// TaskID identifies a task within a scheduler.
type TaskID = uuid.UUID

// Task is run once per tick by a Scheduler until it reports Done.
type Task interface {
	Tick() State
}

// Scheduler is the host facility delivering ticks to tasks.
type Scheduler interface {
	Schedule(t Task) (TaskID, error)
	Cancel(id TaskID) error
}

// Applier applies a batch to a target; *patch.Orchestrator implements it.
type Applier interface {
	Apply(target any, batch patch.Batch) patch.Report
}

// Option configures a Finalizer.
type Option func(*Finalizer)

func WithLog(log *slog.Logger) Option {
	return func(f *Finalizer) { f.log = log }
}

// Finalizer is a Task reapplying a critical batch to one target.
type Finalizer struct {
	id      TaskID
	target  any
	batch   patch.Batch
	state   State
	applier Applier
	sched   Scheduler
	log     *slog.Logger

	applications int
	last         patch.Report
}

// Arm applies batch to target once and registers a finalizer with sched to
// reapply it on each of the next attempts ticks. If attempts is not
// positive nothing is registered and the returned finalizer is already
// Done.
//
// The error is non-nil only when sched is nil or refused the task; the
// immediate application has happened regardless.
func Arm(sched Scheduler, applier Applier, target any, batch patch.Batch, attempts int, opts ...Option) (*Finalizer, error) {
	f := &Finalizer{
		target:  target,
		batch:   batch,
		state:   Armed(attempts),
		applier: applier,
		sched:   sched,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.apply()
	if f.state.IsDone() {
		return f, nil
	}
	if sched == nil {
		f.state = Done()
		return f, fmt.Errorf("arm: %w", ErrNoScheduler)
	}
	id, err := sched.Schedule(f)
	if err != nil {
		f.state = Done()
		return f, err
	}
	f.id = id
	if debug.Finalize() {
		debug.Logf("finalize %s armed for %T: %s\n", id, target, f.state)
	}
	return f, nil
}

// Tick reapplies the batch while armed and moves one step toward Done.
func (f *Finalizer) Tick() State {
	if f.state.IsDone() {
		return f.state
	}
	f.apply()
	f.state = f.state.next()
	if debug.Finalize() {
		debug.Logf("finalize %s tick: %s\n", f.id, f.state)
	}
	if f.state.IsDone() {
		f.deregister()
	}
	return f.state
}

func (f *Finalizer) apply() {
	f.last = f.applier.Apply(f.target, f.batch)
	f.applications++
}

func (f *Finalizer) deregister() {
	if err := f.sched.Cancel(f.id); err != nil {
		err = &DeregisterError{ID: f.id, Err: err}
		f.log.Debug("finalizer left registered", "task", f.id.String(), "error", err)
	}
}

func (f *Finalizer) ID() TaskID { return f.id }

func (f *Finalizer) State() State { return f.state }

// Applications counts batch applications so far, the immediate one included.
func (f *Finalizer) Applications() int { return f.applications }

// LastReport is the report of the most recent application.
func (f *Finalizer) LastReport() patch.Report { return f.last }
