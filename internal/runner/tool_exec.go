package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/petasbytes/go-builder/internal/history"
	"github.com/petasbytes/go-builder/internal/telemetry"
	"github.com/petasbytes/go-builder/memory"
	"github.com/petasbytes/go-builder/tools"
)

// toolAction is the history action tag of a call to the named tool.
func toolAction(name string) string { return "tool_call_" + name }

// execTool runs one tool call. It never panics: an unknown tool, malformed
// arguments, a tool error and a tool panic all come back as a fault.
func (r *Runner) execTool(ctx context.Context, call memory.ToolCall) (string, *history.ErrorEntry) {
	runID, _ := telemetry.RunIDFromContext(ctx)

	// Helper to emit a tool_exec event
	emit := func(start time.Time, inputSize, outputSize int, category string) {
		fields := map[string]any{
			"tool_name":   call.Name,
			"duration_ms": time.Since(start).Milliseconds(),
			"input_size":  inputSize,
			"output_size": outputSize,
			"run_id":      runID,
		}
		if category != "" {
			fields["error"] = category
		} else {
			fields["error"] = nil
		}
		telemetry.Emit("tool_exec", fields)
	}

	start := time.Now()
	inSize := len(call.Arguments)
	fault := func(msg, trace string) *history.ErrorEntry {
		return &history.ErrorEntry{Action: toolAction(call.Name), Error: msg, Traceback: trace}
	}

	def, ok := r.byName[call.Name]
	if !ok {
		emit(start, inSize, 0, "tool not found")
		return "", fault(fmt.Sprintf("tool '%s' is not available", call.Name), history.NoTraceback)
	}

	input, err := def.ParseArguments(call.Arguments)
	if err != nil {
		emit(start, inSize, 0, "invalid arguments")
		return "", fault(err.Error(), "")
	}

	out, stack, err := invoke(ctx, def, input)
	switch {
	case stack != "":
		emit(start, inSize, 0, "tool panic")
		return "", fault(fmt.Sprintf("Error executing %s: %v", call.Name, err), stack)
	case err != nil:
		// Telemetry gets a category only; the model sees the full message.
		emit(start, inSize, 0, "tool error")
		return "", fault(fmt.Sprintf("Error executing %s: %v", call.Name, err), "")
	}
	emit(start, inSize, len(out), "")
	return out, nil
}

// invoke calls the tool, converting a panic into an error plus its stack.
func invoke(ctx context.Context, def tools.ToolDefinition, input json.RawMessage) (out, stack string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = ""
			err = fmt.Errorf("panic: %v", p)
			stack = string(debug.Stack())
		}
	}()
	out, err = def.Function(ctx, input)
	return out, "", err
}

// dispatch executes calls in order and reports whether the completion tool
// succeeded. Calls after a successful completion tool are not executed.
func (r *Runner) dispatch(ctx context.Context, st *runState, rec *history.IterationRecord, calls []memory.ToolCall) bool {
	for _, call := range calls {
		rec.AddAction(toolAction(call.Name))
		out, fault := r.execTool(ctx, call)
		if fault != nil {
			rec.AddError(fault.Action, fault.Error, fault.Traceback)
			st.conv.Append(memory.ToolResult(call.ID, call.Name, fault.Error, true))
			fmt.Fprintf(&st.output, "<strong>Tool Error (%s):</strong>\n<p>%s</p>\n", call.Name, fault.Error)
			continue
		}
		rec.AddToolResult(call.Name, out)
		st.conv.Append(memory.ToolResult(call.ID, call.Name, out, false))
		fmt.Fprintf(&st.output, "<strong>Tool Result (%s):</strong>\n<p>%s</p>\n", call.Name, out)
		if call.Name == tools.CompletionToolName {
			return true
		}
	}
	return false
}
