package tools_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/petasbytes/go-builder/internal/codestore"
	"github.com/petasbytes/go-builder/internal/fsops"
	"github.com/petasbytes/go-builder/internal/safety"
	"github.com/petasbytes/go-builder/tools"
)

// fakeStore is an in-memory CodeStore keyed like the real one.
type fakeStore struct {
	items map[string]codestore.Artifact
	err   error
}

func newFakeStore() *fakeStore { return &fakeStore{items: map[string]codestore.Artifact{}} }

func (f *fakeStore) Store(_ context.Context, content string, meta codestore.Meta) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	id := codestore.ID(content)
	if _, ok := f.items[id]; !ok {
		f.items[id] = codestore.Artifact{ID: id, Content: content, Name: meta.Name, Description: meta.Description}
	}
	return id, nil
}

func (f *fakeStore) Retrieve(_ context.Context, id string) (*codestore.Artifact, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, codestore.ErrNotFound
	}
	return &a, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]codestore.Summary, error) {
	out := []codestore.Summary{}
	for _, a := range f.items {
		out = append(out, codestore.Summary{ID: a.ID, Name: a.Name, Description: a.Description})
	}
	return out, nil
}

// harness wires a registry over a fresh temp sandbox and an in-memory store.
type harness struct {
	dir   string
	store *fakeStore
	defs  map[string]tools.ToolDefinition
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sb, err := fsops.New(t.TempDir(), "", safety.DefaultPolicy())
	if err != nil {
		t.Fatalf("sandbox: %v", err)
	}
	h := &harness{dir: sb.WriteRoot(), store: newFakeStore(), defs: map[string]tools.ToolDefinition{}}
	for _, d := range tools.Registry(tools.Deps{Sandbox: sb, Codes: h.store}) {
		h.defs[d.Name] = d
	}
	return h
}

// call marshals in and invokes the named tool.
func (h *harness) call(t *testing.T, name string, in any) (string, error) {
	t.Helper()
	d, ok := h.defs[name]
	if !ok {
		t.Fatalf("tool %q not registered", name)
	}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return d.Function(context.Background(), b)
}
