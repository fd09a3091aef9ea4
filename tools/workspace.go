package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/go-builder/internal/fsops"
)

type CreateDirectoryInput struct {
	Path string `json:"path" jsonschema_description:"The directory path to create."`
}

type CreateFileInput struct {
	Path    string `json:"path" jsonschema_description:"The file path to create or update."`
	Content string `json:"content" jsonschema_description:"The content to write into the file."`
}

type UpdateFileInput struct {
	Path    string `json:"path" jsonschema_description:"The file path to update."`
	Content string `json:"content" jsonschema_description:"The new content to write into the file."`
}

func createDirectoryDefinition(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name:        "create_directory",
		Description: "Creates a new directory at the specified path.",
		InputSchema: GenerateSchema[CreateDirectoryInput](),
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			var in CreateDirectoryInput
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}
			if in.Path == "" {
				return "", fmt.Errorf("path must not be empty")
			}
			created, err := sb.MakeDir(in.Path)
			if err != nil {
				return "", err
			}
			if !created {
				return "Directory already exists: " + in.Path, nil
			}
			return "Created directory: " + in.Path, nil
		},
	}
}

func createFileDefinition(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name:        "create_file",
		Description: "Creates or updates a file at the specified path with the given content.",
		InputSchema: GenerateSchema[CreateFileInput](),
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			var in CreateFileInput
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}
			if in.Path == "" {
				return "", fmt.Errorf("path must not be empty")
			}
			existed, err := sb.WriteFile(in.Path, in.Content)
			if err != nil {
				return "", err
			}
			if existed {
				return "Updated file: " + in.Path, nil
			}
			return "Created file: " + in.Path, nil
		},
	}
}

func updateFileDefinition(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name:        "update_file",
		Description: "Updates an existing file at the specified path with the new content.",
		InputSchema: GenerateSchema[UpdateFileInput](),
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			var in UpdateFileInput
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}
			if in.Path == "" {
				return "", fmt.Errorf("path must not be empty")
			}
			if _, err := sb.WriteFile(in.Path, in.Content); err != nil {
				return "", err
			}
			return "Updated file: " + in.Path, nil
		},
	}
}
