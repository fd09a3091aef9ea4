package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/go-builder/memory"
)

// NewAnthropicClient returns a client using the API key from the env unless opts carry one.
func NewAnthropicClient(opts Options) *anthropic.Client {
	var ro []option.RequestOption
	if opts.APIKey != "" {
		ro = append(ro, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		ro = append(ro, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		ro = append(ro, option.WithHTTPClient(opts.HTTPClient))
	}
	c := anthropic.NewClient(ro...)
	return &c
}

// Anthropic serves requests through the Messages API.
type Anthropic struct {
	Client    *anthropic.Client
	MaxTokens int64
}

func NewAnthropic(opts Options) *Anthropic {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Anthropic{Client: NewAnthropicClient(opts), MaxTokens: maxTokens}
}

func (a *Anthropic) SupportsToolCalling(model string) bool {
	return supportsTools(model, ProviderAnthropic)
}

func (a *Anthropic) Complete(ctx context.Context, req Request) (*Reply, error) {
	system, msgs := anthropicMessages(req.Messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(resolveModelID(req.Model)),
		MaxTokens: a.MaxTokens,
		Messages:  msgs,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.ToolChoice != "" && len(req.Tools) > 0 {
		params.Tools = anthropicTools(req.Tools)
		if req.ToolChoice == ToolChoiceNone {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
		} else {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
		}
	}

	msg, err := a.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}
	reply := &Reply{}
	var text []string
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			if v.Text != "" {
				text = append(text, v.Text)
			}
		case anthropic.ToolUseBlock:
			reply.ToolCalls = append(reply.ToolCalls, memory.ToolCall{
				ID:        v.ID,
				Name:      v.Name,
				Arguments: v.JSON.Input.Raw(),
			})
		}
	}
	reply.Content = strings.Join(text, "\n")
	return reply, nil
}

func anthropicTools(specs []ToolSpec) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, t := range specs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: t.Properties,
				Required:   t.Required,
			},
		}})
	}
	return out
}

// anthropicMessages folds system messages into a single system prompt and
// maps the rest onto alternating user/assistant turns. Tool results travel as
// tool_result blocks in a user turn; adjacent turns with the same role merge.
func anthropicMessages(msgs []memory.Message) (string, []anthropic.MessageParam) {
	var system []string
	var out []anthropic.MessageParam
	push := func(role anthropic.MessageParamRole, blocks []anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for _, m := range msgs {
		switch m.Role {
		case memory.RoleSystem:
			if m.Content != "" {
				system = append(system, m.Content)
			}
		case memory.RoleUser:
			if m.Content != "" {
				push(anthropic.MessageParamRoleUser, []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(m.Content)})
			}
		case memory.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, toolInput(tc.Arguments), tc.Name))
			}
			push(anthropic.MessageParamRoleAssistant, blocks)
		case memory.RoleTool:
			push(anthropic.MessageParamRoleUser, []anthropic.ContentBlockParamUnion{
				anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError),
			})
		}
	}
	return strings.Join(system, "\n\n"), out
}

// toolInput echoes the model's raw arguments back; anything that is not a
// JSON object is replaced by {} so the request stays valid.
func toolInput(args string) json.RawMessage {
	trimmed := strings.TrimSpace(args)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	return json.RawMessage("{}")
}

// resolveModelID maps aliases to catalog ids and leaves anything else alone.
func resolveModelID(model string) string {
	if info := Lookup(model); info != nil && info.ID != model {
		for _, a := range info.Aliases {
			if a == model {
				return info.ID
			}
		}
	}
	return model
}
