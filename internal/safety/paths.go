// Package safety confines tool file access to a workspace sandbox.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Error codes surfaced to the model inside ToolError bodies.
const (
	CodeOutsideSandbox = "ERR_PATH_OUTSIDE_SANDBOX"
	CodeDeniedRead     = "ERR_DENIED_READ"
	CodeDeniedWrite    = "ERR_DENIED_WRITE"
	CodeNotAFile       = "ERR_NOT_A_FILE"
	CodeNotADirectory  = "ERR_NOT_A_DIRECTORY"
)

// ToolError is a machine-readable error body for surfacing back to the model as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool results small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Policy lists workspace-relative locations the model may not touch.
// DenyDirs block the directory and everything below it for reads and writes;
// DenyFiles block a basename at any depth for writes only.
type Policy struct {
	DenyDirs  []string
	DenyFiles []string
}

// DefaultPolicy protects VCS metadata and the agent's own state directory.
func DefaultPolicy() Policy {
	return Policy{DenyDirs: []string{".git", ".agent"}}
}

// InitSandboxRoot resolves absolute sandbox roots for read and write operations.
// An empty readRoot defaults to the working directory, an empty writeRoot to readRoot.
func InitSandboxRoot(readRoot, writeRoot string) (absRead string, absWrite string, err error) {
	if readRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("getwd: %w", err)
		}
		readRoot = cwd
	}
	if writeRoot == "" {
		writeRoot = readRoot
	}

	readRoot, err = filepath.Abs(readRoot)
	if err != nil {
		return "", "", fmt.Errorf("abs(readRoot): %w", err)
	}
	writeRoot, err = filepath.Abs(writeRoot)
	if err != nil {
		return "", "", fmt.Errorf("abs(writeRoot): %w", err)
	}

	// If EvalSymlinks fails (e.g. the root does not exist yet) keep the absolute path.
	if r, err := filepath.EvalSymlinks(readRoot); err == nil {
		readRoot = r
	}
	if w, err := filepath.EvalSymlinks(writeRoot); err == nil {
		writeRoot = w
	}
	return readRoot, writeRoot, nil
}

// resolve joins relPath onto absRoot and returns the symlink-resolved
// candidate plus its slash-separated form relative to the root.
func resolve(absRoot, relPath string) (string, string, error) {
	if filepath.IsAbs(relPath) {
		return "", "", ToolError{Code: CodeOutsideSandbox, Message: "absolute paths are not allowed"}
	}
	cleaned := filepath.Clean(relPath)
	candidate := filepath.Join(absRoot, cleaned)

	// Resolve the whole candidate if it exists, otherwise its parent so that
	// a symlinked ancestor of a not-yet-created file is still detected.
	if resolved, err := filepath.EvalSymlinks(candidate); err == nil {
		candidate = resolved
	} else if resolvedParent, err := filepath.EvalSymlinks(filepath.Dir(candidate)); err == nil {
		candidate = filepath.Join(resolvedParent, filepath.Base(candidate))
	}

	rel, err := filepath.Rel(absRoot, candidate)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", ToolError{Code: CodeOutsideSandbox, Message: "requested path resolves outside the sandbox root"}
	}
	return candidate, filepath.ToSlash(rel), nil
}

func (p Policy) deniedDir(rel string) (string, bool) {
	for _, d := range p.DenyDirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return d, true
		}
	}
	return "", false
}

// ValidateRead resolves relPath against absRoot for reading. It rejects
// absolute inputs, parent traversal, symlink escapes and denied directories.
func (p Policy) ValidateRead(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if d, ok := p.deniedDir(rel); ok {
		return "", ToolError{Code: CodeDeniedRead, Message: fmt.Sprintf("reads under %s/ are not allowed", d)}
	}
	return candidate, nil
}

// ValidateWrite resolves relPath against absRoot for writing. In addition to
// the read checks it rejects the root itself and denied basenames.
func (p Policy) ValidateWrite(absRoot, relPath string) (string, error) {
	candidate, rel, err := resolve(absRoot, relPath)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", ToolError{Code: CodeDeniedWrite, Message: "the sandbox root itself cannot be written"}
	}
	if d, ok := p.deniedDir(rel); ok {
		return "", ToolError{Code: CodeDeniedWrite, Message: fmt.Sprintf("writes under %s/ are not allowed", d)}
	}
	base := filepath.Base(candidate)
	for _, f := range p.DenyFiles {
		if base == f {
			return "", ToolError{Code: CodeDeniedWrite, Message: fmt.Sprintf("writes to %s are not allowed", f)}
		}
	}
	return candidate, nil
}
