// Package fsops performs file operations for tools inside a safety sandbox.
package fsops

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petasbytes/go-builder/internal/safety"
)

// Sandbox resolves tool paths against fixed read and write roots and applies
// a safety policy to every access.
type Sandbox struct {
	readRoot  string
	writeRoot string
	policy    safety.Policy
}

// New resolves readRoot and writeRoot (see safety.InitSandboxRoot) and
// creates the write root if it does not exist yet.
func New(readRoot, writeRoot string, policy safety.Policy) (*Sandbox, error) {
	r, w, err := safety.InitSandboxRoot(readRoot, writeRoot)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w, 0o755); err != nil {
		return nil, fmt.Errorf("create write root: %w", err)
	}
	// Re-resolve now that the directory exists.
	if resolved, err := filepath.EvalSymlinks(w); err == nil {
		w = resolved
	}
	if resolved, err := filepath.EvalSymlinks(r); err == nil {
		r = resolved
	}
	return &Sandbox{readRoot: r, writeRoot: w, policy: policy}, nil
}

// WriteRoot returns the absolute write root.
func (s *Sandbox) WriteRoot() string { return s.writeRoot }

// ReadFile reads a file addressed by a relative path under the read root.
func (s *Sandbox) ReadFile(relPath string) (string, error) {
	absPath, err := s.policy.ValidateRead(s.readRoot, relPath)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", safety.ToolError{Code: safety.CodeNotAFile, Message: "path is a directory"}
	}
	b, err := os.ReadFile(absPath)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteFile writes content under the write root, creating parent directories.
// It reports whether the file existed before the write.
func (s *Sandbox) WriteFile(relPath, content string) (existed bool, err error) {
	absPath, err := s.policy.ValidateWrite(s.writeRoot, relPath)
	if err != nil {
		return false, err
	}
	if fi, statErr := os.Stat(absPath); statErr == nil {
		if fi.IsDir() {
			return false, safety.ToolError{Code: safety.CodeNotAFile, Message: "path is a directory"}
		}
		existed = true
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return existed, err
	}
	return existed, os.WriteFile(absPath, []byte(content), 0o644)
}

// MakeDir creates a directory (and parents) under the write root and reports
// whether it was newly created.
func (s *Sandbox) MakeDir(relPath string) (created bool, err error) {
	absPath, err := s.policy.ValidateWrite(s.writeRoot, relPath)
	if err != nil {
		return false, err
	}
	fi, err := os.Stat(absPath)
	switch {
	case err == nil && fi.IsDir():
		return false, nil
	case err == nil:
		return false, safety.ToolError{Code: safety.CodeNotADirectory, Message: "path exists and is not a directory"}
	case !errors.Is(err, os.ErrNotExist):
		return false, err
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// ListFiles lists non-recursive directory entries for a relative directory
// path under the read root. It returns a JSON-encoded []string of names, with
// directories suffixed by "/".
func (s *Sandbox) ListFiles(relDir string) (string, error) {
	if relDir == "" {
		relDir = "."
	}
	absDir, err := s.policy.ValidateRead(s.readRoot, relDir)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	b, err := json.Marshal(names)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
