package runner_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-builder/internal/telemetry"
	"github.com/petasbytes/go-builder/tools"
)

func toolPanics(name string) tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        name,
		Description: "always panics",
		InputSchema: tools.GenerateSchema[struct{}](),
		Function: func(context.Context, json.RawMessage) (string, error) {
			panic("kaboom")
		},
	}
}

func readToolExecEvents(t *testing.T) []map[string]any {
	t.Helper()
	f, err := os.Open(filepath.Join(telemetry.Dir(), telemetry.EventsFile))
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	s := bufio.NewScanner(f)
	for s.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(s.Bytes(), &m))
		if m["event"] == "tool_exec" {
			out = append(out, m)
		}
	}
	return out
}

func TestToolExec_JSONL(t *testing.T) {
	gw := &scriptedGateway{turns: []turn{
		calls("",
			call("c1", "list_files", `{"path":"."}`),
			call("c2", "nope", `{}`),
			call("c3", "create_file", `{"path":"a.txt","content":"__SECRET__"}`),
		),
		text("ok"),
	}}
	f := newFixture(t, gw, 1)
	t.Setenv("AGT_OBSERVE_JSON", "1")

	_, err := f.runner.Run(context.Background(), "run-42", "x")
	require.NoError(t, err)

	events := readToolExecEvents(t)
	require.Len(t, events, 3)

	ok := events[0]
	assert.Equal(t, "list_files", ok["tool_name"])
	assert.Equal(t, "run-42", ok["run_id"])
	assert.Nil(t, ok["error"])
	assert.Greater(t, ok["input_size"].(float64), float64(0))
	assert.Greater(t, ok["output_size"].(float64), float64(0))
	assert.GreaterOrEqual(t, ok["duration_ms"].(float64), float64(0))

	assert.Equal(t, "tool not found", events[1]["error"])
	assert.Equal(t, float64(0), events[1]["output_size"])

	b, err := os.ReadFile(filepath.Join(telemetry.Dir(), telemetry.EventsFile))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "__SECRET__", "tool payloads never reach the event log")
}
