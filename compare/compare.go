// Package compare is the pass/fail side of the harness: it evaluates a
// captured outcome against a fixture's expectations and renders mismatches.
// The runner never does this itself.
package compare

import (
	"bytes"
	"fmt"
	"time"

	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/task"

	"github.com/flanksource/cmdsnap/fixtures"
	"github.com/flanksource/cmdsnap/runner"
)

// Verdict is the judged result of one case.
type Verdict struct {
	Name     string          `json:"name"`
	Status   task.Status     `json:"status"`
	Failure  string          `json:"failure,omitempty"`
	Outcome  *runner.Outcome `json:"outcome,omitempty"`
	Duration time.Duration   `json:"duration,omitempty"`
}

// Skip records a case whose fixture asked not to be run.
func Skip(name string) Verdict {
	return Verdict{Name: name, Status: task.StatusSKIP}
}

// Errorf records a case that never produced a usable outcome (parse failure,
// bad bin, spawn failure).
func Errorf(name string, format string, args ...any) Verdict {
	return Verdict{Name: name, Status: task.StatusERR, Failure: fmt.Sprintf(format, args...)}
}

// Fail records a case that executed but did not match its expectations.
func Fail(name, failure string, outcome *runner.Outcome) Verdict {
	v := Verdict{Name: name, Status: task.StatusFAIL, Failure: failure, Outcome: outcome}
	if outcome != nil {
		v.Duration = outcome.Duration
	}
	return v
}

// Evaluate judges an outcome against the fixture's expected status and
// expected output payloads.
func Evaluate(name string, tc *fixtures.TestCase, outcome *runner.Outcome) Verdict {
	v := Verdict{
		Name:     name,
		Outcome:  outcome,
		Duration: outcome.Duration,
	}

	if failure := statusFailure(tc.Run.ExpectedStatus(), outcome); failure != "" {
		v.Status = task.StatusFAIL
		v.Failure = failure
		return v
	}
	if failure := payloadFailure("stdout", tc.Run.ExpectedStdout, outcome.Stdout); failure != "" {
		v.Status = task.StatusFAIL
		v.Failure = failure
		return v
	}
	if !tc.Run.StderrToStdout {
		if failure := payloadFailure("stderr", tc.Run.ExpectedStderr, outcome.Stderr); failure != "" {
			v.Status = task.StatusFAIL
			v.Failure = failure
			return v
		}
	}

	v.Status = task.StatusPASS
	return v
}

func statusFailure(expected fixtures.CommandStatus, outcome *runner.Outcome) string {
	actual := outcome.Classify()
	switch expected.Kind {
	case fixtures.StatusSuccess, fixtures.StatusInterrupted:
		if actual != expected.Kind {
			return fmt.Sprintf("expected status %s, got %s", expected, describe(outcome))
		}
	case fixtures.StatusFailed:
		if actual != fixtures.StatusFailed {
			return fmt.Sprintf("expected a failure, got %s", describe(outcome))
		}
	case fixtures.StatusCode:
		if outcome.State != runner.StateCompleted || outcome.ExitCode != expected.Code {
			return fmt.Sprintf("expected exit code %d, got %s", expected.Code, describe(outcome))
		}
	case fixtures.StatusSkipped:
		// The driver skips these before execution; reaching here is a driver bug.
		return "skipped case was executed"
	}
	return ""
}

func describe(outcome *runner.Outcome) string {
	if outcome.State == runner.StateKilled {
		return "interrupted"
	}
	return fmt.Sprintf("exit code %d", outcome.ExitCode)
}

func payloadFailure(stream string, expected *fixtures.Payload, actual []byte) string {
	if expected == nil {
		return ""
	}
	if bytes.Equal(expected.Data, actual) {
		return ""
	}
	if expected.Binary {
		return fmt.Sprintf("%s differs: expected %d bytes, got %d bytes", stream, len(expected.Data), len(actual))
	}
	return fmt.Sprintf("%s mismatch:\n%s", stream, DiffText(string(expected.Data), string(actual)).ANSI())
}

func (v Verdict) IsOK() bool {
	return v.Status == task.StatusPASS || v.Status == task.StatusSKIP
}

func (v Verdict) Pretty() api.Text {
	t := v.Status.Pretty().Append(" ").Append(v.Name, "font-bold")
	if v.Duration > 0 {
		t = t.Append(fmt.Sprintf(" (%s)", v.Duration.Round(time.Millisecond)), "text-gray-500")
	}
	if v.Failure != "" {
		t = t.NewLine().Append(v.Failure, "text-red-600")
	}
	return t
}

func (v Verdict) String() string {
	return fmt.Sprintf("%s - %s", v.Name, v.Status.String())
}
