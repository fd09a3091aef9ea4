package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/petasbytes/go-builder/internal/fsops"
)

type ListFilesInput struct {
	Path     string `json:"path,omitempty" jsonschema_description:"Optional relative directory to list (defaults to the workspace root)."`
	Page     int    `json:"page,omitempty" jsonschema_description:"1-based page number (default 1)."`
	PageSize int    `json:"page_size,omitempty" jsonschema_description:"Page size (default 200)."`
}

// defaultListFilesPageSize is the fallback page size when page_size <= 0.
const defaultListFilesPageSize = 200

func listFilesDefinition(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name:        "list_files",
		Description: "Lists the names of files in a workspace directory (non-recursive, directories end with /).",
		InputSchema: GenerateSchema[ListFilesInput](),
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			var in ListFilesInput
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}
			namesJSON, err := sb.ListFiles(in.Path)
			if err != nil {
				return "", err
			}
			var names []string
			if err := json.Unmarshal([]byte(namesJSON), &names); err != nil {
				return "", fmt.Errorf("invalid list_files payload: %w", err)
			}
			return paginate(names, in.Page, in.PageSize)
		},
	}
}

// paginate sorts names so paging is stable across filesystems and returns the
// requested page as a JSON array. Out-of-range pages yield "[]".
func paginate(names []string, page, pageSize int) (string, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultListFilesPageSize
	}
	sort.Strings(names)

	// Compare page counts by division so huge inputs cannot overflow.
	if len(names) == 0 || page-1 > (len(names)-1)/pageSize {
		return "[]", nil
	}
	start := (page - 1) * pageSize
	end := len(names)
	if pageSize < end-start {
		end = start + pageSize
	}
	b, err := json.Marshal(names[start:end])
	if err != nil {
		return "", err
	}
	return string(b), nil
}
