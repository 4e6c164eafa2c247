package runner

import (
	"time"

	"github.com/flanksource/cmdsnap/fixtures"
)

// State tracks one execution through its lifecycle:
// Created -> Spawned -> Completed | Killed | SpawnFailed.
type State int

const (
	StateCreated State = iota
	StateSpawned
	StateCompleted
	StateKilled
	StateSpawnFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateSpawned:
		return "spawned"
	case StateCompleted:
		return "completed"
	case StateKilled:
		return "killed"
	case StateSpawnFailed:
		return "spawn-failed"
	default:
		return "unknown"
	}
}

// Outcome is the captured result of one execution, handed to the comparator.
// Stderr is nil when the streams were merged. The runner never judges
// expected-vs-actual; it only reports what happened.
type Outcome struct {
	Stdout   []byte        `json:"stdout,omitempty"`
	Stderr   []byte        `json:"stderr,omitempty"`
	State    State         `json:"state"`
	ExitCode int           `json:"exit_code"`
	Cwd      string        `json:"cwd,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Classify maps the terminal state to a status kind: a clean zero exit is
// success, a non-zero exit is failed, and a killed or signaled process is
// interrupted regardless of any exit code. Skipped is a pre-execution
// decision and never produced here.
func (o *Outcome) Classify() fixtures.StatusKind {
	switch {
	case o.State == StateKilled:
		return fixtures.StatusInterrupted
	case o.State == StateCompleted && o.ExitCode == 0:
		return fixtures.StatusSuccess
	default:
		return fixtures.StatusFailed
	}
}
