package fixtures

import (
	"fmt"
	"strings"
)

// ParseScript parses the compact script syntax:
//
//	$ KEY=VALUE cmd arg1 'arg with space'
//	> --more-args
//	? failed
//	expected stdout, verbatim to end of file
//
// The first line must be a `$ ` command, `> ` lines continue it, an optional
// `? ` line sets the expected status, and everything after is the literal
// expected stdout. The syntax has a single output channel, so stderr is
// always merged into stdout.
func ParseScript(raw []byte) (*TestCase, error) {
	lines := splitKeepTerminators(string(raw))

	var cmdline []string
	if len(lines) > 0 {
		line := lines[0]
		rest, ok := strings.CutPrefix(strings.TrimRight(line, "\n"), "$ ")
		if !ok {
			return nil, fmt.Errorf("expected a `$` line, got %q", strings.TrimRight(line, "\n"))
		}
		words, err := SplitArgs(strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		cmdline = append(cmdline, words...)
		lines = lines[1:]
	}

	for len(lines) > 0 {
		rest, ok := strings.CutPrefix(strings.TrimRight(lines[0], "\n"), "> ")
		if !ok {
			break
		}
		words, err := SplitArgs(strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		cmdline = append(cmdline, words...)
		lines = lines[1:]
	}

	status := CommandStatus{Kind: StatusSuccess}
	if len(lines) > 0 {
		if rest, ok := strings.CutPrefix(strings.TrimRight(lines[0], "\n"), "? "); ok {
			parsed, err := ParseCommandStatus(strings.TrimSpace(rest))
			if err != nil {
				return nil, err
			}
			status = parsed
			lines = lines[1:]
		}
	}

	stdout := strings.Join(lines, "")

	// Leading NAME=VALUE tokens are environment additions; the first token
	// without `=` names the binary. An argument containing `=` before the
	// binary is always taken as an env var, even when that is not what the
	// author meant.
	env := Env{}
	var bin string
	for {
		if len(cmdline) == 0 {
			return nil, fmt.Errorf("no bin specified")
		}
		next := cmdline[0]
		cmdline = cmdline[1:]
		if key, value, found := strings.Cut(next, "="); found {
			if env.Add == nil {
				env.Add = map[string]string{}
			}
			env.Add[key] = value
			continue
		}
		bin = next
		break
	}

	return &TestCase{
		Run: Run{
			Bin:            BinFromName(bin),
			Args:           cmdline,
			Env:            env,
			Status:         &status,
			StderrToStdout: true,
			ExpectedStdout: TextPayload(stdout),
		},
	}, nil
}

// splitKeepTerminators splits s into lines that keep their trailing newline,
// so joining the tail back together preserves the exact expected-output
// bytes.
func splitKeepTerminators(s string) []string {
	var lines []string
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}
	return lines
}
