package finalize

import "fmt"

// State is the lifecycle of a scheduled task: Armed with a number of
// remaining ticks, or Done.
type State struct {
	remaining int
	done      bool
}

// Armed returns the state of a task that will run n more ticks. Armed(0) is
// Done.
func Armed(n int) State {
	if n <= 0 {
		return Done()
	}
	return State{remaining: n}
}

func Done() State {
	return State{done: true}
}

func (s State) IsDone() bool { return s.done }

// Remaining is the number of ticks left while armed.
func (s State) Remaining() int { return s.remaining }

// next is the state after one more tick ran.
func (s State) next() State {
	if s.done {
		return s
	}
	return Armed(s.remaining - 1)
}

func (s State) String() string {
	if s.done {
		return "done"
	}
	return fmt.Sprintf("armed(%d)", s.remaining)
}
