package tools

import (
	"context"
	"encoding/json"
)

// CompletionToolName is the tool whose successful call ends the run.
const CompletionToolName = "task_completed"

type TaskCompletedInput struct{}

// TaskCompletedDefinition carries no side effects; the runner reacts to its name.
var TaskCompletedDefinition = ToolDefinition{
	Name:        CompletionToolName,
	Description: "Indicates that the assistant has completed the task.",
	InputSchema: GenerateSchema[TaskCompletedInput](),
	Function: func(_ context.Context, input json.RawMessage) (string, error) {
		var in TaskCompletedInput
		if err := decodeInput(input, &in); err != nil {
			return "", err
		}
		return "Task marked as completed.", nil
	},
}
