package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// InputSchema is the provider-neutral JSON schema of a tool's arguments.
type InputSchema struct {
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

// ToolDefinition describes a tool to the model and implements it.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema InputSchema
	Function    func(ctx context.Context, input json.RawMessage) (string, error)
}

// GenerateSchema derives an InputSchema from the JSON tags of T. Fields
// without omitempty are required.
func GenerateSchema[T any]() InputSchema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	var out InputSchema
	b, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("tools: marshal schema for %T: %v", v, err))
	}
	if err := json.Unmarshal(b, &out); err != nil {
		panic(fmt.Sprintf("tools: decode schema for %T: %v", v, err))
	}
	if out.Properties == nil {
		out.Properties = map[string]any{}
	}
	return out
}

// ParseArguments checks that raw is a JSON object carrying every required
// argument and returns it ready for the handler. An empty payload is read as {}.
func (d ToolDefinition) ParseArguments(raw string) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		trimmed = []byte("{}")
	}
	var args map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, fmt.Errorf("malformed arguments for %s: %w", d.Name, err)
	}
	if args == nil {
		return nil, fmt.Errorf("malformed arguments for %s: expected a JSON object", d.Name)
	}
	for _, name := range d.InputSchema.Required {
		if _, ok := args[name]; !ok {
			return nil, fmt.Errorf("missing required argument %q for %s", name, d.Name)
		}
	}
	return json.RawMessage(trimmed), nil
}

// decodeInput unmarshals input into v, rejecting arguments the tool does not declare.
func decodeInput(input json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
