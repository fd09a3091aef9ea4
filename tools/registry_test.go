package tools_test

import (
	"testing"

	"github.com/petasbytes/go-builder/tools"
)

func TestRegistry_ToolNames(t *testing.T) {
	defs := tools.Registry(tools.Deps{})
	want := []string{
		"create_directory",
		"create_file",
		"update_file",
		"fetch_code",
		"list_files",
		"task_completed",
		"store_code",
		"retrieve_code",
		"list_all_functions",
	}
	if len(defs) != len(want) {
		t.Fatalf("unexpected number of tools: got %d want %d", len(defs), len(want))
	}
	for i, d := range defs {
		if d.Name != want[i] {
			t.Errorf("tool %d: got %q want %q", i, d.Name, want[i])
		}
		if d.Description == "" || d.Function == nil {
			t.Errorf("tool %q is incomplete", d.Name)
		}
	}
}

func TestRegistry_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range tools.Registry(tools.Deps{}) {
		if seen[d.Name] {
			t.Fatalf("duplicate tool name %q", d.Name)
		}
		seen[d.Name] = true
	}
}

func TestRegistry_CompletionToolPresent(t *testing.T) {
	for _, d := range tools.Registry(tools.Deps{}) {
		if d.Name == tools.CompletionToolName {
			return
		}
	}
	t.Fatalf("%s missing from registry", tools.CompletionToolName)
}

func TestRegistry_RequiredArguments(t *testing.T) {
	want := map[string][]string{
		"create_directory":   {"path"},
		"create_file":        {"path", "content"},
		"update_file":        {"path", "content"},
		"fetch_code":         {"file_path"},
		"store_code":         {"code_content"},
		"retrieve_code":      {"code_id"},
		"list_files":         nil,
		"task_completed":     nil,
		"list_all_functions": nil,
	}
	for _, d := range tools.Registry(tools.Deps{}) {
		got := d.InputSchema.Required
		exp := want[d.Name]
		if len(got) != len(exp) {
			t.Errorf("%s: required=%v want %v", d.Name, got, exp)
			continue
		}
		for i := range exp {
			if got[i] != exp[i] {
				t.Errorf("%s: required=%v want %v", d.Name, got, exp)
			}
		}
		for _, r := range got {
			if _, ok := d.InputSchema.Properties[r]; !ok {
				t.Errorf("%s: required %q has no property", d.Name, r)
			}
		}
	}
}
