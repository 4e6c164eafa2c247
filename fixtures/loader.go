package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/commons/logger"
)

// Fixture file extensions understood by Load.
const (
	ExtTOML   = ".toml"
	ExtYAML   = ".yaml"
	ExtYML    = ".yml"
	ExtScript = ".cli"
)

// Load reads one fixture file, picks the front-end by extension, attaches
// sibling payload files and resolves the filesystem conventions relative to
// the fixture's location.
func Load(path string) (*TestCase, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	var tc *TestCase
	switch ext := filepath.Ext(path); ext {
	case ExtTOML:
		tc, err = ParseTOML(raw)
	case ExtYAML, ExtYML:
		tc, err = ParseYAML(raw)
	case ExtScript:
		tc, err = ParseScript(raw)
	default:
		return nil, fmt.Errorf("unsupported fixture extension %q: %s", ext, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// The compact syntax embeds its expected stdout; the structured syntaxes
	// take payloads from sibling files.
	if filepath.Ext(path) != ExtScript {
		if err := loadSiblingPayloads(path, &tc.Run); err != nil {
			return nil, err
		}
	}

	resolveFilesystem(path, &tc.FS)
	return tc, nil
}

func loadSiblingPayloads(path string, run *Run) error {
	for _, sibling := range []struct {
		ext  string
		dest **Payload
	}{
		{".stdin", &run.Stdin},
		{".stdout", &run.ExpectedStdout},
		{".stderr", &run.ExpectedStderr},
	} {
		payloadPath := replaceExt(path, sibling.ext)
		if _, err := os.Stat(payloadPath); err != nil {
			continue
		}
		payload, err := ReadPayload(payloadPath, run.Binary)
		if err != nil {
			return err
		}
		*sibling.dest = payload
	}
	return nil
}

// resolveFilesystem fills in working directory, sandbox base and the sandbox
// flag from the fixture's location:
//   - an explicit cwd is made absolute relative to the fixture's directory
//   - the base defaults to a `.in` sibling directory when one exists, else to
//     the explicit cwd
//   - the cwd defaults to the base
//   - sandboxing defaults to on exactly when a `.out` sibling exists
func resolveFilesystem(path string, fs *Filesystem) {
	dir := filepath.Dir(path)
	if fs.Cwd != "" && !filepath.IsAbs(fs.Cwd) {
		fs.Cwd = filepath.Join(dir, fs.Cwd)
	}
	if fs.Base == "" {
		in := replaceExt(path, ".in")
		if pathExists(in) {
			fs.Base = in
		} else if fs.Cwd != "" {
			fs.Base = fs.Cwd
		}
	}
	if fs.Cwd == "" {
		fs.Cwd = fs.Base
	}
	if fs.Sandbox == nil {
		sandbox := pathExists(replaceExt(path, ".out"))
		fs.Sandbox = &sandbox
	}
}

// OutDir returns the `.out` sibling for a fixture path, the tree a sandboxed
// run is compared against.
func OutDir(path string) string {
	return replaceExt(path, ".out")
}

// Discover expands glob patterns into a sorted, de-duplicated list of fixture
// files. Patterns without matches are logged and skipped; a missing fixture is
// a per-pattern problem, not a batch failure.
func Discover(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			logger.Warnf("no fixtures matched pattern: %s", pattern)
			continue
		}
		for _, match := range matches {
			switch filepath.Ext(match) {
			case ExtTOML, ExtYAML, ExtYML, ExtScript:
				if !seen[match] {
					seen[match] = true
					paths = append(paths, match)
				}
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
