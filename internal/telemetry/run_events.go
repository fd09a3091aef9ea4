package telemetry

import (
	"context"

	"github.com/petasbytes/go-builder/internal/metrics"
)

// EmitRunStarted records the start of a run with size features of the user
// request; the request text itself is never written.
func EmitRunStarted(ctx context.Context, model string, maxIterations int, request string) {
	runID, _ := RunIDFromContext(ctx)
	Emit("run_started", map[string]any{
		"run_id":         runID,
		"model":          model,
		"max_iterations": maxIterations,
		"request":        metrics.Count(request).Fields(),
	})
}

// EmitRunFinished records a run's terminal outcome.
func EmitRunFinished(ctx context.Context, outcome string, iterations int) {
	runID, _ := RunIDFromContext(ctx)
	Emit("run_finished", map[string]any{
		"run_id":     runID,
		"outcome":    outcome,
		"iterations": iterations,
	})
}

// EmitPass records the end of one iteration pass.
func EmitPass(ctx context.Context, iteration, toolCalls, errs int, durationMs int64) {
	runID, _ := RunIDFromContext(ctx)
	Emit("pass_finished", map[string]any{
		"run_id":      runID,
		"iteration":   iteration,
		"tool_calls":  toolCalls,
		"errors":      errs,
		"duration_ms": durationMs,
	})
}
