package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/petasbytes/go-builder/internal/fsops"
)

type FetchCodeInput struct {
	FilePath string `json:"file_path" jsonschema_description:"The file path to fetch the code from."`
	Offset   int    `json:"offset,omitempty" jsonschema_description:"Line offset (0-based) to start reading from."`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Maximum lines to return from offset (default 400)."`
}

const (
	defaultFetchLimit  = 400
	truncationSentinel = "-- truncated; use offset/limit to fetch more --\n"
	maxLineRunes       = 2000   // per-line clamp
	overallRuneCap     = 24_000 // overall cap after join
)

func fetchCodeDefinition(sb *fsops.Sandbox) ToolDefinition {
	return ToolDefinition{
		Name:        "fetch_code",
		Description: "Retrieves the code from the specified file path. Long files are paged with offset/limit.",
		InputSchema: GenerateSchema[FetchCodeInput](),
		Function: func(_ context.Context, input json.RawMessage) (string, error) {
			var in FetchCodeInput
			if err := decodeInput(input, &in); err != nil {
				return "", err
			}
			content, err := sb.ReadFile(in.FilePath)
			if err != nil {
				return "", err
			}
			return pageLines(content, in.Offset, in.Limit), nil
		},
	}
}

// clampRunes cuts s to at most n runes and reports whether it did.
func clampRunes(s string, n int) (string, bool) {
	r := []rune(s)
	if len(r) <= n {
		return s, false
	}
	return string(r[:n]), true
}

// pageLines returns lines [offset, offset+limit) of content with per-line and
// overall caps. When anything is left out a trailing sentinel tells the model
// to page further.
func pageLines(content string, offset, limit int) string {
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	if offset < 0 {
		offset = 0
	}
	lines := strings.Split(content, "\n")
	if offset > len(lines) {
		offset = len(lines)
	}
	end := min(offset+limit, len(lines))

	truncated := end < len(lines)
	for i := offset; i < end; i++ {
		if clamped, did := clampRunes(lines[i], maxLineRunes); did {
			lines[i] = clamped
			truncated = true
		}
	}
	out := strings.Join(lines[offset:end], "\n")
	if clamped, did := clampRunes(out, overallRuneCap); did {
		out = clamped
		truncated = true
	}
	if truncated {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += truncationSentinel
	}
	return out
}
