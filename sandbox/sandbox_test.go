package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewSeedsFromBase(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "input.txt"), "seed\n")
	writeFile(t, filepath.Join(base, "nested", "deep.txt"), "nested seed\n")

	box, err := New(base)
	require.NoError(t, err)
	defer box.Cleanup()

	data, err := os.ReadFile(box.Path("input.txt"))
	require.NoError(t, err)
	assert.Equal(t, "seed\n", string(data))

	data, err = os.ReadFile(box.Path(filepath.Join("nested", "deep.txt")))
	require.NoError(t, err)
	assert.Equal(t, "nested seed\n", string(data))
}

func TestNewWithoutBase(t *testing.T) {
	box, err := New("")
	require.NoError(t, err)
	defer box.Cleanup()

	entries, err := os.ReadDir(box.Root)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, box.Root, box.Path(""))
}

func TestSeedingLeavesBaseUntouched(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "input.txt"), "seed\n")

	box, err := New(base)
	require.NoError(t, err)
	defer box.Cleanup()

	writeFile(t, box.Path("input.txt"), "mutated\n")

	data, err := os.ReadFile(filepath.Join(base, "input.txt"))
	require.NoError(t, err)
	assert.Equal(t, "seed\n", string(data))
}

func TestCleanup(t *testing.T) {
	box, err := New("")
	require.NoError(t, err)

	box.Cleanup()
	_, err = os.Stat(box.Root)
	assert.True(t, os.IsNotExist(err))
}

func TestDiffIdenticalTrees(t *testing.T) {
	got, want := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(got, "same.txt"), "content\n")
	writeFile(t, filepath.Join(want, "same.txt"), "content\n")

	mismatches, err := Diff(got, want)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestDiffMissingFile(t *testing.T) {
	got, want := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(want, "expected.txt"), "content\n")

	mismatches, err := Diff(got, want)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, Mismatch{Rel: "expected.txt", Kind: "missing"}, mismatches[0])
}

func TestDiffUnexpectedFile(t *testing.T) {
	got, want := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(got, "leftover.txt"), "content\n")

	mismatches, err := Diff(got, want)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, Mismatch{Rel: "leftover.txt", Kind: "unexpected"}, mismatches[0])
}

func TestDiffChangedFile(t *testing.T) {
	got, want := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(got, "report.txt"), "actual\n")
	writeFile(t, filepath.Join(want, "report.txt"), "expected\n")

	mismatches, err := Diff(got, want)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "report.txt", mismatches[0].Rel)
	assert.Equal(t, "changed", mismatches[0].Kind)
	assert.NotEmpty(t, mismatches[0].Detail)
}

func TestDiffChangedBinaryFile(t *testing.T) {
	got, want := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(got, "blob"), string([]byte{0xff, 0xfe}))
	writeFile(t, filepath.Join(want, "blob"), string([]byte{0xff, 0xfe, 0xfd}))

	mismatches, err := Diff(got, want)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, "changed", mismatches[0].Kind)
	assert.Contains(t, mismatches[0].Detail, "expected 3 bytes, got 2 bytes")
}

func TestDiffNestedTrees(t *testing.T) {
	got, want := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(got, "a", "b", "kept.txt"), "v\n")
	writeFile(t, filepath.Join(want, "a", "b", "kept.txt"), "v\n")
	writeFile(t, filepath.Join(want, "a", "gone.txt"), "v\n")

	mismatches, err := Diff(got, want)
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, filepath.Join("a", "gone.txt"), mismatches[0].Rel)
	assert.Equal(t, "missing", mismatches[0].Kind)
}
