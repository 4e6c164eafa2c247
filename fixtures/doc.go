// Package fixtures loads snapshot test cases for command-line programs.
//
// A fixture describes one command invocation: the binary, its arguments,
// environment and filesystem context, an optional stdin payload, and the
// expected exit status and output. Two syntaxes produce the same model.
//
// # Structured syntax
//
// TOML (`.toml`) or YAML (`.yaml`/`.yml`) with a direct field mapping:
//
//	bin.name = "myapp"
//	args = "greet 'Hello World'"
//	status = 2
//	stderr-to-stdout = false
//	timeout = "30s"
//
//	[env]
//	inherit = false
//	add = { LANG = "C" }
//	remove = ["HOME"]
//
//	[fs]
//	cwd = "sub"
//
// `args` is either an explicit list or a single shell-quoted string. Stdin and
// expected output live in sibling files sharing the fixture's base name with
// `.stdin`, `.stdout` and `.stderr` extensions; `binary = true` reads them as
// raw bytes instead of UTF-8 text.
//
// # Compact script syntax
//
// `.cli` files encode one invocation and its literal expected stdout:
//
//	$ LANG=C myapp greet 'Hello World'
//	> --shout
//	? failed
//	HELLO WORLD
//
// Leading NAME=VALUE words are environment additions, `> ` lines continue the
// command, and the optional `? ` line names the expected status (success,
// failed, interrupted, skipped, or an exit code). The rest of the file is the
// expected stdout; stderr is always merged into stdout in this syntax.
//
// # Filesystem conventions
//
// A sibling directory with the `.in` extension seeds the sandbox the command
// runs in; an existing `.out` sibling turns sandbox comparison on by default.
package fixtures
