// Package provider is the model gateway: a provider-neutral completion
// contract with Anthropic and OpenAI backends selected from a model catalog.
package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/petasbytes/go-builder/memory"
)

// Tool choice modes for Request.ToolChoice.
const (
	ToolChoiceAuto = "auto"
	ToolChoiceNone = "none"
)

// ToolSpec is the provider-neutral description of a callable tool.
type ToolSpec struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// Request is a single chat completion request. The full conversation is sent
// every time. Tools are omitted when ToolChoice is empty.
type Request struct {
	Model      string
	Messages   []memory.Message
	Tools      []ToolSpec
	ToolChoice string
}

// Reply is the assistant turn returned by a backend.
type Reply struct {
	Content   string
	ToolCalls []memory.ToolCall
}

// Usable reports whether r carries anything the controller can act on.
func (r *Reply) Usable() bool {
	return r != nil && (r.Content != "" || len(r.ToolCalls) > 0)
}

// Gateway is implemented by every model backend.
type Gateway interface {
	SupportsToolCalling(model string) bool
	Complete(ctx context.Context, req Request) (*Reply, error)
}

// Options configure backend clients. Zero values fall back to SDK defaults,
// which read API keys from ANTHROPIC_API_KEY and OPENAI_API_KEY.
type Options struct {
	APIKey     string
	BaseURL    string
	MaxTokens  int64
	HTTPClient *http.Client
}

// DefaultMaxTokens bounds a single completion.
const DefaultMaxTokens = 4096

// New returns the backend serving model, chosen by the catalog provider.
// Models missing from the catalog go to the OpenAI-compatible backend, whose
// precheck then rejects them.
func New(model string, opts Options) (Gateway, error) {
	name := ProviderOpenAI
	if info := Lookup(model); info != nil {
		name = info.Provider
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	switch name {
	case ProviderAnthropic:
		return NewAnthropic(opts), nil
	case ProviderOpenAI:
		return NewOpenAI(opts), nil
	default:
		return nil, fmt.Errorf("model %q: unsupported provider %q", model, name)
	}
}

// supportsTools is the shared precheck used by every backend.
func supportsTools(model, provider string) bool {
	info := Lookup(model)
	return info != nil && info.Provider == provider && info.SupportsTools
}
