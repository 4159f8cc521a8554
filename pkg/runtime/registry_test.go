package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installRuntime lays out <root>/<lang>/<version>/bin/<binary> with the exec
// bit set, mirroring how runtime packages are installed on disk
func installRuntime(t *testing.T, root, lang, version, binary string) {
	t.Helper()
	binDir := filepath.Join(root, lang, version, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, binary), []byte("#!/bin/sh\n"), 0755))
}

func TestResolveExactVersion(t *testing.T) {
	root := t.TempDir()
	installRuntime(t, root, "python", "3.10.2", "python3")

	desc, err := NewRegistry(root).Resolve("python", "3.10.2")
	require.NoError(t, err)
	assert.Equal(t, "python", desc.Language)
	assert.Equal(t, "3.10.2", desc.Version)
	assert.Equal(t, filepath.Join(root, "python", "3.10.2", "bin", "python3"), desc.BinaryPath)
}

func TestResolvePrefixPicksLast(t *testing.T) {
	root := t.TempDir()
	installRuntime(t, root, "python", "3.11.2", "python3")
	installRuntime(t, root, "python", "3.11.9", "python3")
	installRuntime(t, root, "python", "3.12.1", "python3")

	desc, err := NewRegistry(root).Resolve("python", "3.11")
	require.NoError(t, err)
	assert.Equal(t, "3.11.9", desc.Version)
}

func TestResolveBinaryCandidateOrder(t *testing.T) {
	root := t.TempDir()
	// Only the second candidate basename exists
	installRuntime(t, root, "python", "3.10.0", "python")

	desc, err := NewRegistry(root).Resolve("python", "3.10.0")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "python", "3.10.0", "bin", "python"), desc.BinaryPath)
}

func TestResolveUnsupportedLanguage(t *testing.T) {
	_, err := NewRegistry(t.TempDir()).Resolve("cobol", "1.0")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestResolveMissingVersion(t *testing.T) {
	root := t.TempDir()
	installRuntime(t, root, "python", "3.10.2", "python3")

	_, err := NewRegistry(root).Resolve("python", "99.99")
	assert.ErrorIs(t, err, ErrRuntimeNotFound)
}

func TestResolveMissingLanguageDir(t *testing.T) {
	_, err := NewRegistry(t.TempDir()).Resolve("node", "18")
	assert.ErrorIs(t, err, ErrRuntimeNotFound)
}

func TestResolveEmptyBinDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node", "18.0.0", "bin"), 0755))

	_, err := NewRegistry(root).Resolve("node", "18.0.0")
	assert.ErrorIs(t, err, ErrRuntimeNotFound)
}

func TestResolveSkipsNonExecutable(t *testing.T) {
	root := t.TempDir()
	binDir := filepath.Join(root, "node", "18.0.0", "bin")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "node"), []byte("data"), 0644))

	_, err := NewRegistry(root).Resolve("node", "18.0.0")
	assert.ErrorIs(t, err, ErrRuntimeNotFound)
}

func TestListAvailable(t *testing.T) {
	root := t.TempDir()
	installRuntime(t, root, "python", "3.10.2", "python3")
	installRuntime(t, root, "python", "3.11.9", "python3")
	installRuntime(t, root, "node", "18.20.0", "node")

	installed := NewRegistry(root).ListAvailable()
	assert.Equal(t, []Installed{
		{Language: "node", Version: "18.20.0"},
		{Language: "python", Version: "3.10.2"},
		{Language: "python", Version: "3.11.9"},
	}, installed)
}

func TestListAvailableEmptyRoot(t *testing.T) {
	assert.Empty(t, NewRegistry(t.TempDir()).ListAvailable())
}

func TestSupportedLanguagesSorted(t *testing.T) {
	assert.Equal(t, []string{"node", "python"}, SupportedLanguages())
}
