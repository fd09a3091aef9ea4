package provider_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/petasbytes/go-builder/internal/provider"
	"github.com/petasbytes/go-builder/memory"
)

const openAIToolCallResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1,
  "model": "gpt-4o",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": null,
      "tool_calls": [{"id": "call_1", "type": "function", "function": {"name": "fetch_code", "arguments": "{\"file_path\":\"main.go\"}"}}]
    }
  }],
  "usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
}`

func TestOpenAI_Complete_RequestShapeAndReply(t *testing.T) {
	capReq := &capture{}
	o := provider.NewOpenAI(provider.Options{
		APIKey:     "test",
		HTTPClient: fakeClient(200, openAIToolCallResponse, capReq),
	})

	msgs := []memory.Message{
		memory.System("instructions"),
		memory.User("build it"),
		memory.Assistant("", memory.ToolCall{ID: "call_0", Name: "list_files", Arguments: `{}`}),
		memory.ToolResult("call_0", "list_files", `["a.txt"]`, false),
	}
	reply, err := o.Complete(context.Background(), provider.Request{
		Model:      "gpt-4o",
		Messages:   msgs,
		Tools:      []provider.ToolSpec{{Name: "fetch_code", Description: "d", Properties: map[string]any{"file_path": map[string]any{"type": "string"}}, Required: []string{"file_path"}}},
		ToolChoice: provider.ToolChoiceAuto,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply.Content != "" || len(reply.ToolCalls) != 1 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if tc := reply.ToolCalls[0]; tc.ID != "call_1" || tc.Name != "fetch_code" || tc.Arguments != `{"file_path":"main.go"}` {
		t.Fatalf("unexpected tool call: %+v", tc)
	}

	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role       string `json:"role"`
			ToolCallID string `json:"tool_call_id"`
			ToolCalls  []struct {
				ID string `json:"id"`
			} `json:"tool_calls"`
		} `json:"messages"`
		Tools []struct {
			Type     string `json:"type"`
			Function struct {
				Name       string         `json:"name"`
				Parameters map[string]any `json:"parameters"`
			} `json:"function"`
		} `json:"tools"`
		ToolChoice string `json:"tool_choice"`
	}
	if err := json.Unmarshal(capReq.body, &body); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(capReq.body))
	}
	if body.Model != "gpt-4o" || body.ToolChoice != "auto" {
		t.Fatalf("unexpected model/tool_choice: %s", string(capReq.body))
	}
	roles := []string{"system", "user", "assistant", "tool"}
	if len(body.Messages) != len(roles) {
		t.Fatalf("expected %d messages, got %d", len(roles), len(body.Messages))
	}
	for i, r := range roles {
		if body.Messages[i].Role != r {
			t.Fatalf("message %d: role %q want %q", i, body.Messages[i].Role, r)
		}
	}
	if len(body.Messages[2].ToolCalls) != 1 || body.Messages[2].ToolCalls[0].ID != "call_0" || body.Messages[3].ToolCallID != "call_0" {
		t.Fatalf("tool call linkage lost: %s", string(capReq.body))
	}
	if len(body.Tools) != 1 || body.Tools[0].Function.Name != "fetch_code" || body.Tools[0].Function.Parameters["type"] != "object" {
		t.Fatalf("unexpected tools: %+v", body.Tools)
	}
}

func TestOpenAI_Complete_NoChoicesIsUnusable(t *testing.T) {
	o := provider.NewOpenAI(provider.Options{
		APIKey:     "test",
		HTTPClient: fakeClient(200, `{"id":"c","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`, nil),
	})
	reply, err := o.Complete(context.Background(), provider.Request{Model: "gpt-4o", Messages: []memory.Message{memory.User("hi")}})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply.Usable() {
		t.Fatalf("expected unusable reply, got %+v", reply)
	}
}

func TestOpenAI_Complete_HTTPErrorPropagates(t *testing.T) {
	o := provider.NewOpenAI(provider.Options{
		APIKey:     "test",
		HTTPClient: fakeClient(400, `{"error":{"message":"bad request","type":"invalid_request_error"}}`, nil),
	})
	if _, err := o.Complete(context.Background(), provider.Request{Model: "gpt-4o", Messages: []memory.Message{memory.User("hi")}}); err == nil {
		t.Fatal("expected error from 400 response")
	}
}
