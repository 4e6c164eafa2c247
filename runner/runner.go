package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/flanksource/cmdsnap/fixtures"
	"github.com/flanksource/commons/logger"
)

// Execute spawns the command described by run in cwd and captures its output.
// The bin must already be resolved to a concrete path by the loader; names are
// rejected here, never looked up. Expected-output payloads on run are ignored,
// comparison belongs to the caller.
//
// A non-nil error means the case could not produce a usable outcome (bad bin,
// spawn failure, pipe failure). Timeouts and kills are not errors; they come
// back as a StateKilled outcome.
func Execute(ctx context.Context, run fixtures.Run, cwd string) (*Outcome, error) {
	bin, err := run.Bin.Resolve()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(bin); err != nil {
		return nil, fmt.Errorf("bin doesn't exist: %s", bin)
	}

	cmd := exec.Command(bin, run.Args...)
	cmd.Dir = cwd
	run.Env.Apply(cmd)

	logger.V(4).Infof("exec %s (cwd=%s timeout=%s merged=%v)", run, cwd, run.Timeout, run.StderrToStdout)

	if run.StderrToStdout {
		return captureMerged(ctx, cmd, run)
	}
	return captureSeparated(ctx, cmd, run)
}
