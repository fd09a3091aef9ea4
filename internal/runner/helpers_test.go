package runner_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-builder/internal/codestore"
	"github.com/petasbytes/go-builder/internal/fsops"
	"github.com/petasbytes/go-builder/internal/history"
	"github.com/petasbytes/go-builder/internal/progress"
	"github.com/petasbytes/go-builder/internal/provider"
	"github.com/petasbytes/go-builder/internal/runner"
	"github.com/petasbytes/go-builder/internal/safety"
	"github.com/petasbytes/go-builder/memory"
	"github.com/petasbytes/go-builder/tools"
)

// turn is one scripted gateway response.
type turn struct {
	reply *provider.Reply
	err   error
	panic bool
}

// scriptedGateway replays turns in order and records every request.
// Once the script is exhausted it answers with plain text.
type scriptedGateway struct {
	noTools  bool
	turns    []turn
	requests []provider.Request
}

func (g *scriptedGateway) SupportsToolCalling(string) bool { return !g.noTools }

func (g *scriptedGateway) Complete(_ context.Context, req provider.Request) (*provider.Reply, error) {
	g.requests = append(g.requests, req)
	if len(g.turns) == 0 {
		return &provider.Reply{Content: "ok"}, nil
	}
	t := g.turns[0]
	g.turns = g.turns[1:]
	if t.panic {
		panic("gateway exploded")
	}
	return t.reply, t.err
}

func text(s string) turn { return turn{reply: &provider.Reply{Content: s}} }

func calls(content string, cs ...memory.ToolCall) turn {
	return turn{reply: &provider.Reply{Content: content, ToolCalls: cs}}
}

func call(id, name, args string) memory.ToolCall {
	return memory.ToolCall{ID: id, Name: name, Arguments: args}
}

// sleepLog records requested delays without sleeping.
type sleepLog struct {
	delays []time.Duration
	onCall func()
}

func (s *sleepLog) sleep(_ context.Context, d time.Duration) {
	s.delays = append(s.delays, d)
	if s.onCall != nil {
		s.onCall()
	}
}

type fixture struct {
	gw       *scriptedGateway
	runner   *runner.Runner
	tracker  *progress.Tracker
	sleeps   *sleepLog
	workDir  string
	histPath string
	codes    *codestore.Store
}

func newFixture(t *testing.T, gw *scriptedGateway, maxIterations int, extra ...tools.ToolDefinition) *fixture {
	t.Helper()
	base := t.TempDir()
	t.Setenv("AGT_ARTIFACTS_DIR", filepath.Join(base, "artifacts"))

	sb, err := fsops.New(filepath.Join(base, "workspace"), "", safety.DefaultPolicy())
	require.NoError(t, err)
	codes, err := codestore.Open(context.Background(), filepath.Join(base, "codes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = codes.Close() })

	defs := append(tools.Registry(tools.Deps{Sandbox: sb, Codes: codes}), extra...)
	tracker := progress.NewTracker(maxIterations)
	histPath := filepath.Join(base, "history.json")
	sleeps := &sleepLog{}

	r := runner.New(gw, defs, tracker, history.NewRecorder(histPath), runner.Options{
		Model:          "gpt-4o",
		MaxIterations:  maxIterations,
		Instructions:   "be helpful",
		Pacing:         runner.DefaultPacing(),
		Sleep:          sleeps.sleep,
		TranscriptPath: filepath.Join(base, "conversation.json"),
	})
	return &fixture{
		gw:       gw,
		runner:   r,
		tracker:  tracker,
		sleeps:   sleeps,
		workDir:  sb.WriteRoot(),
		histPath: histPath,
		codes:    codes,
	}
}

func (f *fixture) history(t *testing.T) *history.RunHistory {
	t.Helper()
	h, err := history.Load(f.histPath)
	require.NoError(t, err)
	return h
}
