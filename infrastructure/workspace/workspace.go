package workspace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Workspace owns the scratch directory for one pipeline run. Every path it
// hands out lives under that directory and is deleted by ReleaseAll no matter
// how the run ends. Cleanup failures are logged, never propagated, so they
// cannot mask the real pipeline error.
type Workspace struct {
	root   string
	output io.Writer

	mu       sync.Mutex
	released bool
}

// Option is a functional option for configuring a Workspace
type Option func(*Workspace)

// WithOutput sets the writer cleanup warnings are logged to
func WithOutput(w io.Writer) Option {
	return func(ws *Workspace) {
		ws.output = w
	}
}

// New creates a workspace rooted at a fresh unique directory under baseDir.
// An empty baseDir uses the system temp directory.
func New(baseDir string, opts ...Option) (*Workspace, error) {
	root, err := os.MkdirTemp(baseDir, "faceblur-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	ws := &Workspace{
		root:   root,
		output: io.Discard,
	}

	for _, opt := range opts {
		opt(ws)
	}

	return ws, nil
}

// Root returns the workspace's run directory
func (ws *Workspace) Root() string {
	return ws.root
}

// File returns a path for a scratch file with the given name. The file is
// not created; the path is simply scoped to the run directory.
func (ws *Workspace) File(name string) string {
	return filepath.Join(ws.root, name)
}

// Dir creates and returns a scratch subdirectory with the given name
func (ws *Workspace) Dir(name string) (string, error) {
	path := filepath.Join(ws.root, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workspace subdirectory: %w", err)
	}
	return path, nil
}

// ReleaseAll deletes the run directory and everything in it. Safe to call
// multiple times; already-missing files are fine.
func (ws *Workspace) ReleaseAll() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.released {
		return
	}
	ws.released = true

	if err := os.RemoveAll(ws.root); err != nil {
		fmt.Fprintf(ws.output, "warning: failed to clean up workspace %s: %v\n", ws.root, err)
	}
}
