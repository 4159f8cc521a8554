package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/kiln/pkg/types"
)

// Workspace is the ephemeral per-job scratch directory holding request files.
// It lives for exactly one job: created before spawn, destroyed before the
// response is sent, on every exit path.
type Workspace struct {
	root string
}

// Create materializes a unique directory under the system temp root and
// writes all request files into it, creating intermediate directories as
// needed. On any failure the partially populated directory is removed.
func Create(files []types.File) (*Workspace, error) {
	root, err := os.MkdirTemp("", "kiln-job-")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	ws := &Workspace{root: root}
	for _, f := range files {
		if err := ws.writeFile(f); err != nil {
			_ = ws.Destroy()
			return nil, err
		}
	}
	return ws, nil
}

func (w *Workspace) writeFile(f types.File) error {
	dest := filepath.Join(w.root, filepath.FromSlash(f.Name))
	if dir := filepath.Dir(dest); dir != w.root {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.Name, err)
		}
	}
	if err := os.WriteFile(dest, []byte(f.Content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Name, err)
	}
	return nil
}

// Root returns the workspace directory path on the host
func (w *Workspace) Root() string {
	return w.root
}

// Destroy removes the workspace directory and everything in it. It is safe
// to call more than once.
func (w *Workspace) Destroy() error {
	if w.root == "" {
		return nil
	}
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}
	w.root = ""
	return nil
}
