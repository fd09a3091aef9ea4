package provider

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/petasbytes/go-builder/memory"
)

// OpenAI serves requests through the Chat Completions API with function tools.
type OpenAI struct {
	Client    openai.Client
	MaxTokens int64
}

func NewOpenAI(opts Options) *OpenAI {
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
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &OpenAI{Client: openai.NewClient(ro...), MaxTokens: maxTokens}
}

func (o *OpenAI) SupportsToolCalling(model string) bool {
	return supportsTools(model, ProviderOpenAI)
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (*Reply, error) {
	params := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(resolveModelID(req.Model)),
		Messages:  openAIMessages(req.Messages),
		MaxTokens: openai.Int(o.MaxTokens),
	}
	if req.ToolChoice != "" && len(req.Tools) > 0 {
		params.Tools = openAITools(req.Tools)
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(req.ToolChoice)}
	}

	resp, err := o.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}
	msg := resp.Choices[0].Message
	reply := &Reply{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		reply.ToolCalls = append(reply.ToolCalls, memory.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return reply, nil
}

func openAITools(specs []ToolSpec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(specs))
	for _, t := range specs {
		schema := shared.FunctionParameters{
			"type":                 "object",
			"properties":           t.Properties,
			"additionalProperties": false,
		}
		if len(t.Required) > 0 {
			schema["required"] = t.Required
		}
		out = append(out, openai.ChatCompletionToolParam{Function: shared.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters:  schema,
		}})
	}
	return out
}

func openAIMessages(msgs []memory.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case memory.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case memory.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case memory.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case memory.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				calls = append(calls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if m.Content != "" {
				assistant.Content = openai.ChatCompletionAssistantMessageParamContentUnion{OfString: openai.String(m.Content)}
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		}
	}
	return out
}
