package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flanksource/cmdsnap/fixtures"
)

// captureSeparated runs cmd with independent stdin/stdout/stderr pipes. The
// stdin writer and both readers run concurrently; with a stdin payload larger
// than the pipe buffer and a chatty child, any sequential ordering of the
// three deadlocks.
func captureSeparated(ctx context.Context, cmd *exec.Cmd, run fixtures.Run) (*Outcome, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		closeAll(outR, outW)
		return nil, fmt.Errorf("failed to allocate stderr pipe: %w", err)
	}
	inR, inW, err := os.Pipe()
	if err != nil {
		closeAll(outR, outW, errR, errW)
		return nil, fmt.Errorf("failed to allocate stdin pipe: %w", err)
	}

	cmd.Stdin = inR
	cmd.Stdout = outW
	cmd.Stderr = errW

	started := time.Now()
	if err := cmd.Start(); err != nil {
		closeAll(outR, outW, errR, errW, inR, inW)
		return &Outcome{State: StateSpawnFailed, Cwd: cmd.Dir}, fmt.Errorf("failed to spawn %s: %w", cmd.Path, err)
	}
	// The child owns these ends now; a copy left open in the parent would keep
	// both readers from ever seeing EOF.
	closeAll(outW, errW, inR)

	var stdout, stderr bytes.Buffer
	var pumps errgroup.Group
	pumps.Go(func() error {
		defer outR.Close()
		_, err := io.Copy(&stdout, outR)
		return err
	})
	pumps.Go(func() error {
		defer errR.Close()
		_, err := io.Copy(&stderr, errR)
		return err
	})
	pumps.Go(func() error {
		return feedStdin(inW, run.StdinBytes())
	})

	state, code, waitErr := wait(ctx, cmd, run.Timeout)
	if err := pumps.Wait(); err != nil {
		return nil, fmt.Errorf("io failure during capture: %w", err)
	}
	if waitErr != nil {
		return nil, waitErr
	}

	return &Outcome{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		State:    state,
		ExitCode: code,
		Cwd:      cmd.Dir,
		Duration: time.Since(started),
	}, nil
}

// captureMerged runs cmd with a single output pipe whose write end is handed
// to the child as both stdout and stderr, yielding one interleaved buffer.
func captureMerged(ctx context.Context, cmd *exec.Cmd, run fixtures.Run) (*Outcome, error) {
	mergedR, mergedW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate output pipe: %w", err)
	}
	inR, inW, err := os.Pipe()
	if err != nil {
		closeAll(mergedR, mergedW)
		return nil, fmt.Errorf("failed to allocate stdin pipe: %w", err)
	}

	cmd.Stdin = inR
	cmd.Stdout = mergedW
	cmd.Stderr = mergedW // duplicated onto both child descriptors

	started := time.Now()
	if err := cmd.Start(); err != nil {
		closeAll(mergedR, mergedW, inR, inW)
		return &Outcome{State: StateSpawnFailed, Cwd: cmd.Dir}, fmt.Errorf("failed to spawn %s: %w", cmd.Path, err)
	}
	// Mandatory on every exit path: release the parent-side write end right
	// after the spawn. The child holds its own duplicates; any copy still open
	// here keeps the pipe from signaling end-of-stream and the reader hangs
	// until the parent exits.
	closeAll(mergedW, inR)

	var merged bytes.Buffer
	var pumps errgroup.Group
	pumps.Go(func() error {
		defer mergedR.Close()
		_, err := io.Copy(&merged, mergedR)
		return err
	})
	pumps.Go(func() error {
		return feedStdin(inW, run.StdinBytes())
	})

	state, code, waitErr := wait(ctx, cmd, run.Timeout)
	if err := pumps.Wait(); err != nil {
		return nil, fmt.Errorf("io failure during capture: %w", err)
	}
	if waitErr != nil {
		return nil, waitErr
	}

	return &Outcome{
		Stdout:   merged.Bytes(),
		State:    state,
		ExitCode: code,
		Cwd:      cmd.Dir,
		Duration: time.Since(started),
	}, nil
}

// feedStdin writes the payload to the child's input and closes it when
// exhausted. A broken pipe just means the child stopped reading first; that
// is the child's business, not a capture failure.
func feedStdin(w *os.File, payload []byte) error {
	defer w.Close()
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("failed to write stdin payload: %w", err)
	}
	return nil
}

// wait blocks until the child exits, the timeout expires, or ctx is
// cancelled. Expiry and cancellation kill the whole process tree; killing
// closes the child's descriptors, which is what unblocks the concurrent
// readers and the stdin writer without any polling on their side. A killed or
// signaled child is always StateKilled, whatever exit code the kill produced.
func wait(ctx context.Context, cmd *exec.Cmd, timeout time.Duration) (State, int, error) {
	track(cmd.Process)
	defer untrack(cmd.Process)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var expiry <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expiry = timer.C
	}

	select {
	case err := <-done:
		return classifyExit(cmd, err)
	case <-expiry:
	case <-ctx.Done():
	}

	KillTree(cmd.Process.Pid)
	<-done
	return StateKilled, 0, nil
}

func classifyExit(cmd *exec.Cmd, err error) (State, int, error) {
	if err == nil {
		return StateCompleted, 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ProcessState.Exited() {
			return StateCompleted, exitErr.ProcessState.ExitCode(), nil
		}
		return StateKilled, 0, nil
	}
	return StateSpawned, 0, fmt.Errorf("wait failed for %s: %w", cmd.Path, err)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
