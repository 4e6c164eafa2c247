// Package sandbox isolates a case's filesystem effects: it seeds a throwaway
// working directory from a fixture's `.in` template tree and, after the run,
// compares what the command produced against the `.out` snapshot tree.
package sandbox

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/cmdsnap/compare"
)

// Sandbox is a temporary directory a sandboxed case runs in. Each case owns
// its sandbox exclusively.
type Sandbox struct {
	Root string
}

// New creates a fresh sandbox, seeded with a copy of base when base is a
// directory that exists.
func New(base string) (*Sandbox, error) {
	root, err := os.MkdirTemp("", "cmdsnap-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox: %w", err)
	}
	if base != "" {
		if info, err := os.Stat(base); err == nil && info.IsDir() {
			if err := os.CopyFS(root, os.DirFS(base)); err != nil {
				_ = os.RemoveAll(root)
				return nil, fmt.Errorf("failed to seed sandbox from %s: %w", base, err)
			}
		}
	}
	return &Sandbox{Root: root}, nil
}

// Path resolves a base-relative path inside the sandbox.
func (s *Sandbox) Path(rel string) string {
	if rel == "" {
		return s.Root
	}
	return filepath.Join(s.Root, rel)
}

func (s *Sandbox) Cleanup() {
	if err := os.RemoveAll(s.Root); err != nil {
		logger.Warnf("failed to remove sandbox %s: %v", s.Root, err)
	}
}

// Mismatch is one difference between the produced tree and the snapshot.
type Mismatch struct {
	Rel    string `json:"rel"`
	Kind   string `json:"kind"` // missing | unexpected | changed
	Detail string `json:"detail,omitempty"`
}

func (m Mismatch) String() string {
	if m.Detail == "" {
		return fmt.Sprintf("%s: %s", m.Rel, m.Kind)
	}
	return fmt.Sprintf("%s: %s\n%s", m.Rel, m.Kind, m.Detail)
}

// Diff compares the tree a sandboxed run produced against the expected
// snapshot tree, reporting missing, unexpected and changed files.
func Diff(gotDir, wantDir string) ([]Mismatch, error) {
	var mismatches []Mismatch

	err := walkFiles(wantDir, func(rel string, want []byte) error {
		got, err := os.ReadFile(filepath.Join(gotDir, rel))
		if os.IsNotExist(err) {
			mismatches = append(mismatches, Mismatch{Rel: rel, Kind: "missing"})
			return nil
		}
		if err != nil {
			return err
		}
		if !bytes.Equal(want, got) {
			detail := fmt.Sprintf("expected %d bytes, got %d bytes", len(want), len(got))
			if utf8.Valid(want) && utf8.Valid(got) {
				detail = compare.DiffText(string(want), string(got)).ANSI()
			}
			mismatches = append(mismatches, Mismatch{Rel: rel, Kind: "changed", Detail: detail})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk snapshot %s: %w", wantDir, err)
	}

	err = walkFiles(gotDir, func(rel string, _ []byte) error {
		if _, err := os.Stat(filepath.Join(wantDir, rel)); os.IsNotExist(err) {
			mismatches = append(mismatches, Mismatch{Rel: rel, Kind: "unexpected"})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk sandbox %s: %w", gotDir, err)
	}

	return mismatches, nil
}

func walkFiles(dir string, visit func(rel string, data []byte) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return visit(rel, data)
	})
}
