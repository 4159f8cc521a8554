package runtime

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cuemby/kiln/pkg/log"
)

var (
	// ErrUnsupportedLanguage is returned for languages outside the supported set
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrRuntimeNotFound is returned when no installed runtime matches the request
	ErrRuntimeNotFound = errors.New("runtime not found")
)

// languageSpec lists the binary basenames to probe under bin/, in order. A
// language's runtimes always live under <root>/<language>.
type languageSpec struct {
	binaries []string
}

var supportedLanguages = map[string]languageSpec{
	"python": {binaries: []string{"python3", "python"}},
	"node":   {binaries: []string{"node"}},
}

// SupportedLanguages returns the closed set of recognized language identifiers
func SupportedLanguages() []string {
	langs := make([]string, 0, len(supportedLanguages))
	for lang := range supportedLanguages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Descriptor points at a concrete runtime binary resolved for a request
type Descriptor struct {
	Language   string
	Version    string // resolved version directory name
	VersionDir string
	BinaryPath string
}

// Installed identifies one discovered runtime installation
type Installed struct {
	Language string
	Version  string
}

// Registry maps (language, version) requests to runtime binaries by scanning
// a package tree laid out as <root>/<language>/<version>/bin/<binary>. It
// performs no writes; resolution is a pure function of filesystem state.
type Registry struct {
	root string

	mu       sync.RWMutex
	cached   []Installed
	watching bool
}

// NewRegistry creates a registry over the given package root
func NewRegistry(root string) *Registry {
	return &Registry{root: root}
}

// Resolve finds the runtime binary for a language and version. Version
// matching tries the exact directory first, then falls back to the
// lexicographically last directory whose name has the requested version as a
// prefix, so "3.11" binds to "3.11.9".
func (r *Registry) Resolve(language, version string) (*Descriptor, error) {
	spec, ok := supportedLanguages[language]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedLanguage, language)
	}

	base := filepath.Join(r.root, language)
	versionDir, resolved, err := findVersionDir(base, version)
	if err != nil {
		return nil, fmt.Errorf("runtime for %s version %s not found: %w", language, version, err)
	}

	binDir := filepath.Join(versionDir, "bin")
	for _, name := range spec.binaries {
		candidate := filepath.Join(binDir, name)
		if isExecutable(candidate) {
			return &Descriptor{
				Language:   language,
				Version:    resolved,
				VersionDir: versionDir,
				BinaryPath: candidate,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: no executable binary in %s (tried %v)",
		ErrRuntimeNotFound, binDir, spec.binaries)
}

// findVersionDir locates the version directory under base, exact match first
// then prefix fallback. Ties are broken by sorted order, last wins.
func findVersionDir(base, version string) (dir, resolved string, err error) {
	exact := filepath.Join(base, version)
	if info, serr := os.Stat(exact); serr == nil && info.IsDir() {
		return exact, version, nil
	}

	entries, rerr := os.ReadDir(base)
	if rerr != nil {
		return "", "", fmt.Errorf("%w: version '%s' not found in %s", ErrRuntimeNotFound, version, base)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), version) {
			candidates = append(candidates, e.Name())
		}
	}
	if len(candidates) == 0 {
		return "", "", fmt.Errorf("%w: version '%s' not found in %s", ErrRuntimeNotFound, version, base)
	}
	sort.Strings(candidates)
	last := candidates[len(candidates)-1]
	return filepath.Join(base, last), last, nil
}

// ListAvailable enumerates installed runtimes across all supported languages.
// When the package-tree watcher is running the scan result is cached and
// reused until the watcher observes a change.
func (r *Registry) ListAvailable() []Installed {
	r.mu.RLock()
	if r.watching && r.cached != nil {
		out := r.cached
		r.mu.RUnlock()
		return out
	}
	r.mu.RUnlock()

	installed := r.scan()

	r.mu.Lock()
	if r.watching {
		r.cached = installed
	}
	r.mu.Unlock()
	return installed
}

func (r *Registry) scan() []Installed {
	installed := []Installed{}
	for _, lang := range SupportedLanguages() {
		base := filepath.Join(r.root, lang)
		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		var versions []string
		for _, e := range entries {
			if e.IsDir() {
				versions = append(versions, e.Name())
			}
		}
		sort.Strings(versions)
		for _, v := range versions {
			installed = append(installed, Installed{Language: lang, Version: v})
		}
	}
	return installed
}

// invalidate drops the cached enumeration
func (r *Registry) invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
	logger := log.WithComponent("runtime")
	logger.Debug().Msg("runtime cache invalidated")
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}
