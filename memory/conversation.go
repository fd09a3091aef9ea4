package memory

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model-issued request to run a named tool.
// Arguments is the raw JSON text produced by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of the conversation.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant returns an assistant message carrying optional tool calls.
func Assistant(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolResult returns the tool message answering the call with the given id.
func ToolResult(callID, name, content string, isError bool) Message {
	return Message{Role: RoleTool, ToolCallID: callID, Name: name, Content: content, IsError: isError}
}

// Conversation is an append-only, ordered message log owned by a single run.
type Conversation struct {
	msgs []Message
}

// NewConversation returns a conversation seeded with msgs.
func NewConversation(msgs ...Message) *Conversation {
	c := &Conversation{}
	c.Append(msgs...)
	return c
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...Message) {
	for _, m := range msgs {
		m.ToolCalls = append([]ToolCall(nil), m.ToolCalls...)
		c.msgs = append(c.msgs, m)
	}
}

// Messages returns a copy of the log, oldest first.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.msgs) }

// LoadConversation reads a snapshot written by SaveConversation. A missing
// file yields a nil slice and no error.
func LoadConversation(path string) ([]Message, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SaveConversation writes msgs as indented JSON, creating the parent directory.
func SaveConversation(path string, msgs []Message) error {
	b, err := json.MarshalIndent(msgs, "", " ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
