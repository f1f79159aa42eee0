package finalize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	id      TaskID
	task    Task
	removed bool
}

// Ticker is a Scheduler owning an ordered task list. Each Tick runs every
// live task once, in registration order, and drops tasks that report Done
// or were cancelled. Tasks scheduled during a tick first run on the next
// one.
//
// Like the rest of the engine a Ticker is driven from one goroutine.
type Ticker struct {
	tasks []*entry
	ticks uint64
	log   *slog.Logger
}

func NewTicker(log *slog.Logger) *Ticker {
	if log == nil {
		log = slog.Default()
	}
	return &Ticker{log: log}
}

func (t *Ticker) Schedule(task Task) (TaskID, error) {
	if task == nil {
		return TaskID{}, fmt.Errorf("schedule: nil task")
	}
	id := uuid.New()
	t.tasks = append(t.tasks, &entry{id: id, task: task})
	return id, nil
}

// Cancel drops the task with the given id. It may be called from within a
// running task, including by the task on itself.
func (t *Ticker) Cancel(id TaskID) error {
	for _, e := range t.tasks {
		if e.id == id && !e.removed {
			e.removed = true
			return nil
		}
	}
	return fmt.Errorf("cancel %s: %w", id, ErrUnknownTask)
}

// Tick runs one scheduling round and returns the number of tasks still
// registered afterwards.
func (t *Ticker) Tick() int {
	t.ticks++
	n := len(t.tasks)
	for i := 0; i < n; i++ {
		e := t.tasks[i]
		if e.removed {
			continue
		}
		if t.run(e).IsDone() {
			e.removed = true
		}
	}
	live := t.tasks[:0]
	for _, e := range t.tasks {
		if !e.removed {
			live = append(live, e)
		}
	}
	clear(t.tasks[len(live):])
	t.tasks = live
	return len(t.tasks)
}

// run isolates the tick loop from a panicking task, which is dropped.
func (t *Ticker) run(e *entry) (st State) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("task panicked, dropping it", "task", e.id.String(), "panic", fmt.Sprint(r))
			st = Done()
		}
	}()
	return e.task.Tick()
}

// Len is the number of registered tasks.
func (t *Ticker) Len() int {
	return len(t.tasks)
}

// Ticks is the number of rounds run so far.
func (t *Ticker) Ticks() uint64 {
	return t.ticks
}

// Run ticks every interval until ctx is done.
func (t *Ticker) Run(ctx context.Context, interval time.Duration) error {
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			t.Tick()
		}
	}
}

// RunUntilIdle ticks every interval until no task is left or ctx is done.
func (t *Ticker) RunUntilIdle(ctx context.Context, interval time.Duration) error {
	if t.Len() == 0 {
		return nil
	}
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			if t.Tick() == 0 {
				return nil
			}
		}
	}
}

var _ Scheduler = (*Ticker)(nil)
