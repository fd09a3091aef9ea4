// Package telemetry writes structured JSONL events describing runs, passes
// and tool executions. Events never carry raw prompts, tool payloads or
// generated code; only sizes, names and categories.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventsFile is the JSONL file name inside the artifacts directory.
const EventsFile = "events.jsonl"

var mu sync.Mutex

// ObserveEnabled reports whether JSONL emission is enabled (AGT_OBSERVE_JSON=1).
func ObserveEnabled() bool {
	return os.Getenv("AGT_OBSERVE_JSON") == "1"
}

// Dir returns the artifacts directory: AGT_ARTIFACTS_DIR, or .agent when unset.
func Dir() string {
	if d := os.Getenv("AGT_ARTIFACTS_DIR"); d != "" {
		return d
	}
	return ".agent"
}

// Emit writes a single JSON line to <Dir>/events.jsonl when observation is enabled.
// It augments fields with RFC3339Nano time and the event name.
func Emit(name string, fields map[string]any) {
	if !ObserveEnabled() {
		return
	}

	// Make a shallow copy so callers' maps aren't mutated.
	m := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		m[k] = v
	}
	m["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	m["event"] = name

	b, err := json.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: marshal: %v\n", err)
		return
	}

	dir := Dir()
	mu.Lock()
	defer mu.Unlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: mkdir %s: %v\n", dir, err)
		return
	}

	path := filepath.Join(dir, EventsFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: open %s: %v\n", path, err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: write %s: %v\n", path, err)
	}
}

// Warn reports a best-effort failure on stderr and as a JSONL event.
// It never fails; callers use it for outcomes they intentionally discard.
func Warn(event string, fields map[string]any, err error) {
	fmt.Fprintf(os.Stderr, "warning: %s: %v\n", event, err)
	m := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		m[k] = v
	}
	m["error"] = err.Error()
	Emit(event, m)
}
