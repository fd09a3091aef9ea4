// Package history records what happened in each iteration of a run and
// persists the whole run history after every pass.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/petasbytes/go-builder/internal/telemetry"
)

// NoTraceback is stored when an error has no stack to attach.
const NoTraceback = "No traceback available."

// ErrorEntry is a non-fatal failure captured inside an iteration.
type ErrorEntry struct {
	Action    string `json:"action"`
	Error     string `json:"error"`
	Traceback string `json:"traceback,omitempty"`
}

// ToolResult is the textual outcome of a successful tool call.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result string `json:"result"`
}

// IterationRecord collects the actions, model replies, tool results and
// errors of one pass. Iteration is 1-based.
type IterationRecord struct {
	Iteration    int          `json:"iteration"`
	Actions      []string     `json:"actions"`
	LLMResponses []string     `json:"llm_responses"`
	ToolResults  []ToolResult `json:"tool_results"`
	Errors       []ErrorEntry `json:"errors"`
}

// NewIteration returns an empty record for pass n with non-nil lists so the
// persisted document always carries all four keys as arrays.
func NewIteration(n int) *IterationRecord {
	return &IterationRecord{
		Iteration:    n,
		Actions:      []string{},
		LLMResponses: []string{},
		ToolResults:  []ToolResult{},
		Errors:       []ErrorEntry{},
	}
}

// AddAction notes an action taken during the pass.
func (r *IterationRecord) AddAction(a string) { r.Actions = append(r.Actions, a) }

// AddResponse notes the textual content of a model reply.
func (r *IterationRecord) AddResponse(content string) {
	r.LLMResponses = append(r.LLMResponses, content)
}

// AddToolResult notes a successful tool execution.
func (r *IterationRecord) AddToolResult(tool, result string) {
	r.ToolResults = append(r.ToolResults, ToolResult{Tool: tool, Result: result})
}

// AddError notes a non-fatal failure.
func (r *IterationRecord) AddError(action, msg, traceback string) {
	r.Errors = append(r.Errors, ErrorEntry{Action: action, Error: msg, Traceback: traceback})
}

// RunHistory is the ordered, append-only list of iteration records of a run.
type RunHistory struct {
	Iterations []*IterationRecord `json:"iterations"`
}

// New returns an empty history.
func New() *RunHistory {
	return &RunHistory{Iterations: []*IterationRecord{}}
}

// Begin appends a fresh record for the next pass and returns it.
func (h *RunHistory) Begin() *IterationRecord {
	rec := NewIteration(len(h.Iterations) + 1)
	h.Iterations = append(h.Iterations, rec)
	return rec
}

// Len returns the number of recorded passes.
func (h *RunHistory) Len() int { return len(h.Iterations) }

// JSON returns the indented document form of the history.
func (h *RunHistory) JSON() (string, error) {
	b, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Load reads a history snapshot written by a Recorder.
func Load(path string) (*RunHistory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	h := New()
	if err := json.Unmarshal(b, h); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", path, err)
	}
	return h, nil
}

// Recorder writes history snapshots to a single file, replacing the previous one.
type Recorder struct {
	path string
}

// NewRecorder returns a recorder for path.
func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

// Path returns the snapshot location.
func (r *Recorder) Path() string { return r.path }

// Save serializes h and atomically replaces the snapshot file.
func (r *Recorder) Save(h *RunHistory) error {
	b, err := json.MarshalIndent(h, "", "    ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Record is the best-effort form of Save used by the iteration loop: a
// failure is reported through telemetry and otherwise discarded.
func (r *Recorder) Record(h *RunHistory) {
	if err := r.Save(h); err != nil {
		telemetry.Warn("history_write_failed", map[string]any{
			"path":       r.path,
			"iterations": h.Len(),
		}, err)
	}
}
