package fixtures

import (
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
)

// SplitArgs splits a shell-quoted string into words using POSIX rules, so
// `arg1 'arg with space'` becomes ["arg1", "arg with space"].
func SplitArgs(s string) ([]string, error) {
	args, err := shlex.Split(s, true)
	if err != nil {
		return nil, fmt.Errorf("failed to split %q: %w", s, err)
	}
	return args, nil
}

// JoinArgs renders an argument list back to a shell-quoted string that
// SplitArgs would split into the same list.
func JoinArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = QuoteArg(arg)
	}
	return strings.Join(quoted, " ")
}

// QuoteArg single-quotes arg when it contains anything a shell would
// interpret. Embedded single quotes are closed, escaped and reopened.
func QuoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsFunc(arg, needsQuoting) {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'"'"'`) + "'"
}

func needsQuoting(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return !strings.ContainsRune("_@%+=:,./-", r)
}
