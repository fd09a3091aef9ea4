package runner

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/petasbytes/go-builder/internal/history"
	"github.com/petasbytes/go-builder/internal/progress"
	"github.com/petasbytes/go-builder/internal/provider"
	"github.com/petasbytes/go-builder/internal/telemetry"
	"github.com/petasbytes/go-builder/memory"
	"github.com/petasbytes/go-builder/tools"
)

// History action tags for gateway rounds and pass-level failures.
const (
	ActionCompletion       = "llm_completion"
	ActionSecondCompletion = "second_llm_completion"
	ActionMainLoop         = "main_loop"
)

// Outcome is the terminal state of a run that got past the precheck.
type Outcome string

const (
	OutcomeSignal Outcome = "completed_by_signal"
	OutcomeBudget Outcome = "completed_by_budget"
)

// ErrToolCallingUnsupported is returned when the configured model cannot call tools.
var ErrToolCallingUnsupported = errors.New("model does not support function calling")

// DefaultInstructions is the built-in system prompt.
//
//go:embed instructions.md
var DefaultInstructions string

// LoadInstructions reads the system prompt from path, or returns
// DefaultInstructions when path is empty.
func LoadInstructions(path string) (string, error) {
	if path == "" {
		return DefaultInstructions, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read instructions: %w", err)
	}
	return string(b), nil
}

// Options configure a Runner.
type Options struct {
	Model         string
	MaxIterations int
	Instructions  string
	Pacing        Pacing
	// Sleep defaults to the wall-clock Sleep.
	Sleep Sleeper
	// TranscriptPath, when set, receives the conversation after every pass.
	TranscriptPath string
}

// Runner executes runs against one gateway and a fixed tool registry.
type Runner struct {
	Gateway  provider.Gateway
	Tools    []tools.ToolDefinition
	Progress *progress.Tracker
	Recorder *history.Recorder

	opts   Options
	byName map[string]tools.ToolDefinition
	specs  []provider.ToolSpec
	// background tracks runs launched by Start.
	background sync.WaitGroup
}

// New returns a Runner. The tool registry is indexed once here and never
// changes afterwards.
func New(gw provider.Gateway, toolDefs []tools.ToolDefinition, tracker *progress.Tracker, rec *history.Recorder, opts Options) *Runner {
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.Instructions == "" {
		opts.Instructions = DefaultInstructions
	}
	r := &Runner{
		Gateway:  gw,
		Tools:    toolDefs,
		Progress: tracker,
		Recorder: rec,
		opts:     opts,
		byName:   make(map[string]tools.ToolDefinition, len(toolDefs)),
		specs:    make([]provider.ToolSpec, 0, len(toolDefs)),
	}
	for _, t := range toolDefs {
		r.byName[t.Name] = t
		r.specs = append(r.specs, provider.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			Properties:  t.InputSchema.Properties,
			Required:    t.InputSchema.Required,
		})
	}
	return r
}

// runState is owned by a single run.
type runState struct {
	conv   *memory.Conversation
	hist   *history.RunHistory
	output strings.Builder
}

// Run executes a run to completion on the calling goroutine.
func (r *Runner) Run(ctx context.Context, runID, request string) (Outcome, error) {
	if err := r.Progress.Begin(runID, r.opts.MaxIterations); err != nil {
		return "", err
	}
	return r.execute(telemetry.WithRunID(ctx, runID), request)
}

// Start claims the tracker and executes the run on a background goroutine.
// It fails with progress.ErrRunActive while another run is in progress;
// callers poll the tracker for the result.
func (r *Runner) Start(ctx context.Context, runID, request string) error {
	if err := r.Progress.Begin(runID, r.opts.MaxIterations); err != nil {
		return err
	}
	r.background.Add(1)
	go func() {
		defer r.background.Done()
		if _, err := r.execute(telemetry.WithRunID(ctx, runID), request); err != nil {
			telemetry.Warn("run_failed", map[string]any{"run_id": runID}, err)
		}
	}()
	return nil
}

// Wait blocks until every run launched by Start has returned.
func (r *Runner) Wait() { r.background.Wait() }

func (r *Runner) execute(ctx context.Context, request string) (Outcome, error) {
	model := r.opts.Model
	if !r.Gateway.SupportsToolCalling(model) {
		r.Progress.Fail("Model does not support function calling.")
		telemetry.EmitRunFinished(ctx, "precheck_failed", 0)
		return "", fmt.Errorf("%w: %s", ErrToolCallingUnsupported, model)
	}
	telemetry.EmitRunStarted(ctx, model, r.opts.MaxIterations, request)

	st := &runState{hist: history.New()}
	snapshot, err := st.hist.JSON()
	if err != nil {
		return "", err
	}
	st.conv = memory.NewConversation(
		memory.System(r.opts.Instructions),
		memory.User(request),
		memory.System("History:\n"+snapshot),
	)

	for n := 1; n <= r.opts.MaxIterations; n++ {
		if err := ctx.Err(); err != nil {
			return "", r.cancel(ctx, st, err)
		}
		signaled, anomalous := r.pass(ctx, st, n)
		if signaled {
			st.output.WriteString("\n<h2>COMPLETE</h2>\n")
			r.Progress.Complete(st.output.String())
			telemetry.EmitRunFinished(ctx, string(OutcomeSignal), n)
			return OutcomeSignal, nil
		}
		if n == r.opts.MaxIterations {
			break
		}
		if anomalous {
			r.opts.Sleep(ctx, r.opts.Pacing.AnomalyDelay)
		} else {
			r.opts.Sleep(ctx, r.opts.Pacing.PassDelay)
		}
	}
	if err := ctx.Err(); err != nil {
		return "", r.cancel(ctx, st, err)
	}
	// Budget exhaustion is reported like a graceful completion.
	r.Progress.Complete(st.output.String())
	telemetry.EmitRunFinished(ctx, string(OutcomeBudget), st.hist.Len())
	return OutcomeBudget, nil
}

// cancel ends a run whose context is done. Passes already recorded stay in
// the persisted history; no further pass is attempted.
func (r *Runner) cancel(ctx context.Context, st *runState, cause error) error {
	done := st.hist.Len()
	st.output.WriteString("\n<h2>CANCELLED</h2>\n")
	r.Progress.Fail(st.output.String())
	telemetry.EmitRunFinished(ctx, "cancelled", done)
	return fmt.Errorf("run cancelled after %d iterations: %w", done, cause)
}

// pass runs iteration n and persists the history whatever happens in it.
func (r *Runner) pass(ctx context.Context, st *runState, n int) (signaled, anomalous bool) {
	start := time.Now()
	r.Progress.SetIteration(n)
	rec := st.hist.Begin()

	func() {
		defer func() {
			if p := recover(); p != nil {
				rec.AddError(ActionMainLoop, fmt.Sprint(p), string(debug.Stack()))
			}
		}()
		signaled, anomalous = r.step(ctx, st, rec, n)
	}()

	r.Progress.SetOutput(st.output.String())
	if r.Recorder != nil {
		r.Recorder.Record(st.hist)
	}
	r.saveTranscript(st)
	telemetry.EmitPass(ctx, n, countCalls(rec), len(rec.Errors), time.Since(start).Milliseconds())
	return signaled, anomalous
}

func (r *Runner) step(ctx context.Context, st *runState, rec *history.IterationRecord, n int) (signaled, anomalous bool) {
	rec.AddAction(ActionCompletion)
	reply, err := r.Gateway.Complete(ctx, provider.Request{
		Model:      r.opts.Model,
		Messages:   st.conv.Messages(),
		Tools:      r.specs,
		ToolChoice: provider.ToolChoiceAuto,
	})
	if err != nil || !reply.Usable() {
		rec.AddError(ActionCompletion, failureMessage(err, "Unknown error"), "")
		return false, true
	}

	rec.AddResponse(reply.Content)
	fmt.Fprintf(&st.output, "\n<h2>Iteration %d:</h2>\n", n)

	if len(reply.ToolCalls) == 0 {
		fmt.Fprintf(&st.output, "<strong>LLM Response:</strong>\n<p>%s</p>\n", reply.Content)
		st.conv.Append(memory.Assistant(reply.Content))
		return false, false
	}

	fmt.Fprintf(&st.output, "<strong>Tool Call:</strong>\n<p>%s</p>\n", reply.Content)
	st.conv.Append(memory.Assistant(reply.Content, reply.ToolCalls...))
	if r.dispatch(ctx, st, rec, reply.ToolCalls) {
		return true, false
	}
	r.followUp(ctx, st, rec)
	return false, false
}

// followUp asks the model to react to the tool results with tools disabled.
func (r *Runner) followUp(ctx context.Context, st *runState, rec *history.IterationRecord) {
	rec.AddAction(ActionSecondCompletion)
	reply, err := r.Gateway.Complete(ctx, provider.Request{
		Model:      r.opts.Model,
		Messages:   st.conv.Messages(),
		Tools:      r.specs,
		ToolChoice: provider.ToolChoiceNone,
	})
	if err != nil || reply == nil {
		rec.AddError(ActionSecondCompletion, failureMessage(err, "Unknown error in second LLM response."), "")
		return
	}
	rec.AddResponse(reply.Content)
	fmt.Fprintf(&st.output, "<strong>LLM Response:</strong>\n<p>%s</p>\n", reply.Content)
	// Tool calls are not expected with tools disabled and would stay unanswered.
	st.conv.Append(memory.Assistant(reply.Content))
}

func (r *Runner) saveTranscript(st *runState) {
	if r.opts.TranscriptPath == "" {
		return
	}
	if err := memory.SaveConversation(r.opts.TranscriptPath, st.conv.Messages()); err != nil {
		telemetry.Warn("transcript_write_failed", map[string]any{"path": r.opts.TranscriptPath}, err)
	}
}

func failureMessage(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}

func countCalls(rec *history.IterationRecord) int {
	n := 0
	for _, a := range rec.Actions {
		if strings.HasPrefix(a, "tool_call_") {
			n++
		}
	}
	return n
}
