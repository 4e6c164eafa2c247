package fixtures

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// TestCase is the canonical in-memory representation of one fixture: the
// command to run plus its filesystem context. It is built once by Load (or one
// of the parse front-ends) and not modified afterwards; executing it produces
// exactly one outcome.
type TestCase struct {
	Run Run        `json:"run"`
	FS  Filesystem `json:"fs,omitempty"`
}

// Run describes a single command invocation and its expectations.
type Run struct {
	Bin            Bin            `json:"bin,omitempty"`
	Args           []string       `json:"args,omitempty"`
	Env            Env            `json:"env,omitempty"`
	Stdin          *Payload       `json:"stdin,omitempty"`
	StderrToStdout bool           `json:"stderr_to_stdout,omitempty"`
	Status         *CommandStatus `json:"status,omitempty"`
	ExpectedStdout *Payload       `json:"expected_stdout,omitempty"`
	ExpectedStderr *Payload       `json:"expected_stderr,omitempty"`
	Binary         bool           `json:"binary,omitempty"`
	Timeout        time.Duration  `json:"timeout,omitempty"`
}

// ExpectedStatus returns the expected command status, defaulting to success.
// The default is the same for every fixture syntax.
func (r Run) ExpectedStatus() CommandStatus {
	if r.Status == nil {
		return CommandStatus{Kind: StatusSuccess}
	}
	return *r.Status
}

// StdinBytes returns the stdin payload, or nil when the fixture has none.
func (r Run) StdinBytes() []byte {
	if r.Stdin == nil {
		return nil
	}
	return r.Stdin.Data
}

func (r Run) String() string {
	parts := []string{r.Bin.String()}
	parts = append(parts, r.Args...)
	return strings.Join(parts, " ")
}

// BinKind discriminates the Bin variants.
type BinKind int

const (
	// BinUnset means the fixture never named a binary.
	BinUnset BinKind = iota
	// BinPath is a concrete path chosen by the loader.
	BinPath
	// BinName is a bare name the loader has not resolved yet.
	BinName
	// BinError carries a resolution failure to be reported at execution time
	// instead of at load time.
	BinError
)

// Bin identifies the target under test. Exactly one variant is populated;
// resolving a name to a path is the loader's job, never the runner's.
type Bin struct {
	Kind BinKind `json:"kind,omitempty"`
	Path string  `json:"path,omitempty"`
	Name string  `json:"name,omitempty"`
	Err  string  `json:"error,omitempty"`
}

func BinFromPath(path string) Bin { return Bin{Kind: BinPath, Path: path} }
func BinFromName(name string) Bin { return Bin{Kind: BinName, Name: name} }
func BinFromError(msg string) Bin { return Bin{Kind: BinError, Err: msg} }

// Resolve returns the concrete path to spawn, or the error the variant
// carries. Only BinPath ever succeeds; there is no implicit PATH lookup here.
func (b Bin) Resolve() (string, error) {
	switch b.Kind {
	case BinPath:
		return b.Path, nil
	case BinName:
		return "", fmt.Errorf("unknown bin.name = %s", b.Name)
	case BinError:
		return "", fmt.Errorf("%s", b.Err)
	default:
		return "", fmt.Errorf("no bin specified")
	}
}

func (b Bin) String() string {
	switch b.Kind {
	case BinPath:
		return b.Path
	case BinName:
		return b.Name
	case BinError:
		return "<error: " + b.Err + ">"
	default:
		return "<unset>"
	}
}

// StatusKind enumerates expected command results.
type StatusKind int

const (
	StatusSuccess StatusKind = iota
	StatusFailed
	StatusInterrupted
	StatusSkipped
	StatusCode
)

// CommandStatus is the expected status of a run: one of the named kinds, or a
// specific exit code.
type CommandStatus struct {
	Kind StatusKind `json:"kind"`
	Code int        `json:"code,omitempty"`
}

// ParseCommandStatus parses success|failed|interrupted|skipped or a base-10
// exit code.
func ParseCommandStatus(s string) (CommandStatus, error) {
	switch s {
	case "success":
		return CommandStatus{Kind: StatusSuccess}, nil
	case "failed":
		return CommandStatus{Kind: StatusFailed}, nil
	case "interrupted":
		return CommandStatus{Kind: StatusInterrupted}, nil
	case "skipped":
		return CommandStatus{Kind: StatusSkipped}, nil
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return CommandStatus{}, fmt.Errorf("expected an exit code, got %s", s)
	}
	return CommandStatus{Kind: StatusCode, Code: code}, nil
}

func (s CommandStatus) String() string {
	switch s.Kind {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusInterrupted:
		return "interrupted"
	case StatusSkipped:
		return "skipped"
	case StatusCode:
		return strconv.Itoa(s.Code)
	default:
		return "unknown"
	}
}

// Env describes how the child's environment is derived from the parent's.
// Inherit defaults to true when unset.
type Env struct {
	Inherit *bool             `json:"inherit,omitempty" yaml:"inherit,omitempty" toml:"inherit"`
	Add     map[string]string `json:"add,omitempty" yaml:"add,omitempty" toml:"add"`
	Remove  []string          `json:"remove,omitempty" yaml:"remove,omitempty" toml:"remove"`
}

func (e Env) Inherits() bool {
	return e.Inherit == nil || *e.Inherit
}

// Update layers a directory-level default env under this case-level env.
// Inherit is only taken from the default when the case leaves it unset,
// default additions never overwrite case additions, and default removals run
// after case removals. A plain map union would break the first-wins contract,
// so the merge is spelled out.
func (e *Env) Update(defaults Env) {
	if e.Inherit == nil {
		e.Inherit = defaults.Inherit
	}
	for _, key := range sortedKeys(defaults.Add) {
		if e.Add == nil {
			e.Add = map[string]string{}
		}
		if _, exists := e.Add[key]; !exists {
			e.Add[key] = defaults.Add[key]
		}
	}
	e.Remove = append(e.Remove, defaults.Remove...)
}

// Apply computes the child process environment on cmd. Removals are applied
// before additions, so an added name always takes effect even when it is also
// listed for removal.
func (e Env) Apply(cmd *exec.Cmd) {
	if e.Inherits() && len(e.Add) == 0 && len(e.Remove) == 0 {
		return // exec inherits the parent environment as-is
	}

	var env []string
	if e.Inherits() {
		env = os.Environ()
	}
	for _, name := range e.Remove {
		prefix := name + "="
		env = lo.Filter(env, func(entry string, _ int) bool {
			return !strings.HasPrefix(entry, prefix)
		})
	}
	for _, key := range sortedKeys(e.Add) {
		env = append(env, key+"="+e.Add[key])
	}
	if env == nil {
		env = []string{}
	}
	cmd.Env = env
}

func sortedKeys(m map[string]string) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

// Filesystem describes the working directory and sandbox context of a case.
// All fields are optional in fixtures; Load fills them in from the fixture's
// location and the `.in`/`.out` sibling conventions.
type Filesystem struct {
	Cwd     string `json:"cwd,omitempty" yaml:"cwd,omitempty" toml:"cwd"`
	Base    string `json:"base,omitempty" yaml:"base,omitempty" toml:"base"`
	Sandbox *bool  `json:"sandbox,omitempty" yaml:"sandbox,omitempty" toml:"sandbox"`
}

func (f Filesystem) Sandboxed() bool {
	return f.Sandbox != nil && *f.Sandbox
}

// RelCwd returns the working directory relative to the sandbox base. The
// working directory must live inside the base; a cwd that escapes it is a
// resolution error. When either side is unset there is nothing to relate and
// the result is empty.
func (f Filesystem) RelCwd() (string, error) {
	if f.Cwd == "" || f.Base == "" {
		return "", nil
	}
	rel, err := filepath.Rel(f.Base, f.Cwd)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("fs.cwd (%s) must be within fs.base (%s)", f.Cwd, f.Base)
	}
	if rel == "." {
		rel = ""
	}
	return rel, nil
}
