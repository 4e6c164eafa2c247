package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/flanksource/cmdsnap/compare"
	"github.com/flanksource/cmdsnap/fixtures"
	"github.com/flanksource/cmdsnap/runner"
	"github.com/flanksource/cmdsnap/sandbox"
	"github.com/flanksource/cmdsnap/shutdown"
)

var (
	binDir      string
	keepSandbox bool
)

var runCmd = &cobra.Command{
	Use:          "run [fixtures...]",
	Short:        "Run snapshot fixtures (.toml, .yaml, .cli)",
	Args:         cobra.MinimumNArgs(1),
	RunE:         runFixtures,
	SilenceUsage: true,
}

func runFixtures(cmd *cobra.Command, args []string) error {
	wd, err := getWorkingDir()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	shutdown.AddHookWithPriority("kill in-flight processes", shutdown.PriorityProcesses, runner.KillActive)

	paths, err := fixtures.Discover(lo.Map(args, func(pattern string, _ int) string {
		if filepath.IsAbs(pattern) {
			return pattern
		}
		return filepath.Join(wd, pattern)
	}))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no fixtures found")
	}
	logger.Infof("running %d fixtures", len(paths))

	stats := compare.Stats{}
	for _, path := range paths {
		verdict := runOne(cmd.Context(), wd, path)
		fmt.Println(verdict.Pretty().ANSI())
		stats = stats.Add(verdict)
	}

	fmt.Println(stats.Pretty().ANSI())
	if stats.HasFailures() {
		exitCode = 1
	}
	return nil
}

func runOne(ctx context.Context, wd, path string) compare.Verdict {
	name := path
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		name = rel
	}

	tc, err := fixtures.Load(path)
	if err != nil {
		return compare.Errorf(name, "%v", err)
	}
	tc.Run.Bin = resolveBin(tc.Run.Bin)

	// A skipped fixture never reaches the runner.
	if tc.Run.ExpectedStatus().Kind == fixtures.StatusSkipped {
		return compare.Skip(name)
	}

	cwd := tc.FS.Cwd
	var box *sandbox.Sandbox
	if tc.FS.Sandboxed() {
		rel, err := tc.FS.RelCwd()
		if err != nil {
			return compare.Errorf(name, "%v", err)
		}
		box, err = sandbox.New(tc.FS.Base)
		if err != nil {
			return compare.Errorf(name, "%v", err)
		}
		if keepSandbox {
			logger.Infof("keeping sandbox for %s: %s", name, box.Root)
		} else {
			defer box.Cleanup()
		}
		cwd = box.Path(rel)
	}

	outcome, err := runner.Execute(ctx, tc.Run, cwd)
	if err != nil {
		return compare.Errorf(name, "%v", err)
	}

	verdict := compare.Evaluate(name, tc, outcome)
	if verdict.IsOK() && box != nil {
		if outDir := fixtures.OutDir(path); pathIsDir(outDir) {
			mismatches, err := sandbox.Diff(box.Root, outDir)
			if err != nil {
				return compare.Errorf(name, "%v", err)
			}
			if len(mismatches) > 0 {
				lines := lo.Map(mismatches, func(m sandbox.Mismatch, _ int) string { return m.String() })
				return compare.Fail(name, "sandbox differs from snapshot:\n"+strings.Join(lines, "\n"), outcome)
			}
		}
	}
	return verdict
}

func pathIsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// resolveBin is the loader-side resolution step: fixture names are resolved
// against --bin-dir first, then PATH. Failures are deferred into the Bin so
// they surface when the case executes, not while the batch is loading.
func resolveBin(bin fixtures.Bin) fixtures.Bin {
	if bin.Kind != fixtures.BinName {
		return bin
	}
	if binDir != "" {
		candidate := filepath.Join(binDir, bin.Name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return fixtures.BinFromPath(candidate)
		}
	}
	path, err := exec.LookPath(bin.Name)
	if err != nil {
		return fixtures.BinFromError(fmt.Sprintf("unknown bin.name = %s", bin.Name))
	}
	return fixtures.BinFromPath(path)
}

func init() {
	runCmd.Flags().StringVar(&binDir, "bin-dir", "", "Directory searched before PATH when resolving bin names")
	runCmd.Flags().BoolVar(&keepSandbox, "keep-sandbox", false, "Keep sandbox directories after the run")
	rootCmd.AddCommand(runCmd)
}
