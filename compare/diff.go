package compare

import (
	"strings"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffText renders a line-prefixed diff of expected vs actual text, expected
// lines in red with `-`, actual-only lines in green with `+`.
func DiffText(expected, actual string) api.Text {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, actual, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	result := clicky.Text("")
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range splitLines(diff.Text) {
				result = result.Append("-", "text-red-700").Append(line, "text-red-500").NewLine()
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range splitLines(diff.Text) {
				result = result.Append("+", "text-green-700").Append(line, "text-green-500").NewLine()
			}
		case diffmatchpatch.DiffEqual:
			lines := splitLines(diff.Text)
			// Equal runs can be huge; keep a little context on each side.
			if len(lines) > 4 {
				lines = append(lines[:2], lines[len(lines)-2:]...)
			}
			for _, line := range lines {
				result = result.Append(" ").Append(line, "text-gray-500").NewLine()
			}
		}
	}
	return result
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
