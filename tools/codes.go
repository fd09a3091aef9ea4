package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/petasbytes/go-builder/internal/codestore"
)

// CodeStore is the content-addressed artifact store used by the code tools.
type CodeStore interface {
	Store(ctx context.Context, content string, meta codestore.Meta) (string, error)
	Retrieve(ctx context.Context, id string) (*codestore.Artifact, error)
	ListAll(ctx context.Context) ([]codestore.Summary, error)
}

type StoreCodeInput struct {
	CodeContent string `json:"code_content" jsonschema_description:"The content of the code or function to store."`
	Name        string `json:"name,omitempty" jsonschema_description:"Optional name of the stored function."`
	Description string `json:"description,omitempty" jsonschema_description:"Optional one-line description of what the code does."`
}

type RetrieveCodeInput struct {
	CodeID string `json:"code_id" jsonschema_description:"The unique identifier for the code."`
}

type ListAllFunctionsInput struct{}

func storeCodeDefinition(store CodeStore) ToolDefinition {
	return ToolDefinition{
		Name:        "store_code",
		Description: "Stores a code or function in the database with a unique identifier generated from the code content.",
		InputSchema: GenerateSchema[StoreCodeInput](),
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in StoreCodeInput
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}
			id, err := store.Store(ctx, in.CodeContent, codestore.Meta{Name: in.Name, Description: in.Description})
			if err != nil {
				return "", err
			}
			return "Code stored with ID: " + id, nil
		},
	}
}

func retrieveCodeDefinition(store CodeStore) ToolDefinition {
	return ToolDefinition{
		Name:        "retrieve_code",
		Description: "Retrieves a code or function from the database using its unique identifier.",
		InputSchema: GenerateSchema[RetrieveCodeInput](),
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in RetrieveCodeInput
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}
			art, err := store.Retrieve(ctx, in.CodeID)
			if errors.Is(err, codestore.ErrNotFound) {
				return fmt.Sprintf("Code with ID %s not found.", in.CodeID), nil
			}
			if err != nil {
				return "", err
			}
			return art.Content, nil
		},
	}
}

func listAllFunctionsDefinition(store CodeStore) ToolDefinition {
	return ToolDefinition{
		Name:        "list_all_functions",
		Description: "Retrieves a list of all stored functions in the database with their IDs, names, and descriptions.",
		InputSchema: GenerateSchema[ListAllFunctionsInput](),
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in ListAllFunctionsInput
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}
			all, err := store.ListAll(ctx)
			if err != nil {
				return "", err
			}
			b, err := json.Marshal(all)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}
}
