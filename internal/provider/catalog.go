package provider

import "strings"

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// ModelInfo describes a known model in the catalog.
type ModelInfo struct {
	ID            string   `json:"id"`
	Provider      string   `json:"provider"`
	DisplayName   string   `json:"display_name"`
	ContextWindow int      `json:"context_window"`
	SupportsTools bool     `json:"supports_tools"`
	Aliases       []string `json:"aliases,omitempty"`
}

// Models is the built-in model catalog. Dated snapshots resolve to their
// family entry through Lookup.
var Models = []ModelInfo{
	// OpenAI
	{
		ID: "gpt-4o", Provider: ProviderOpenAI, DisplayName: "GPT-4o",
		ContextWindow: 128000, SupportsTools: true,
		Aliases: []string{"4o"},
	},
	{
		ID: "gpt-4o-mini", Provider: ProviderOpenAI, DisplayName: "GPT-4o mini",
		ContextWindow: 128000, SupportsTools: true,
		Aliases: []string{"4o-mini"},
	},
	{
		ID: "gpt-4.1", Provider: ProviderOpenAI, DisplayName: "GPT-4.1",
		ContextWindow: 1047576, SupportsTools: true,
	},
	{
		ID: "gpt-4-turbo", Provider: ProviderOpenAI, DisplayName: "GPT-4 Turbo",
		ContextWindow: 128000, SupportsTools: true,
	},
	{
		ID: "gpt-3.5-turbo", Provider: ProviderOpenAI, DisplayName: "GPT-3.5 Turbo",
		ContextWindow: 16385, SupportsTools: true,
	},
	{
		ID: "gpt-3.5-turbo-instruct", Provider: ProviderOpenAI, DisplayName: "GPT-3.5 Turbo Instruct",
		ContextWindow: 4096, SupportsTools: false,
	},
	{
		ID: "o1-mini", Provider: ProviderOpenAI, DisplayName: "o1-mini",
		ContextWindow: 128000, SupportsTools: false,
	},

	// Anthropic
	{
		ID: "claude-sonnet-4-5", Provider: ProviderAnthropic, DisplayName: "Claude Sonnet 4.5",
		ContextWindow: 200000, SupportsTools: true,
		Aliases: []string{"sonnet", "claude-sonnet"},
	},
	{
		ID: "claude-3-7-sonnet-latest", Provider: ProviderAnthropic, DisplayName: "Claude 3.7 Sonnet",
		ContextWindow: 200000, SupportsTools: true,
		Aliases: []string{"claude-3-7-sonnet"},
	},
	{
		ID: "claude-3-5-haiku-latest", Provider: ProviderAnthropic, DisplayName: "Claude 3.5 Haiku",
		ContextWindow: 200000, SupportsTools: true,
		Aliases: []string{"haiku", "claude-3-5-haiku"},
	},
}

// Lookup returns the catalog entry for a model id or alias. Failing an exact
// match, the entry whose id is the longest dash-delimited prefix of modelID
// wins, so "gpt-4o-2024-08-06" resolves to "gpt-4o". Unknown models yield nil.
func Lookup(modelID string) *ModelInfo {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return nil
	}
	for i := range Models {
		if Models[i].ID == modelID {
			return &Models[i]
		}
		for _, alias := range Models[i].Aliases {
			if alias == modelID {
				return &Models[i]
			}
		}
	}
	var best *ModelInfo
	for i := range Models {
		id := Models[i].ID
		if strings.HasPrefix(modelID, id+"-") && (best == nil || len(id) > len(best.ID)) {
			best = &Models[i]
		}
	}
	return best
}

// SupportsToolCalling reports whether the catalog marks model as tool capable.
// Unknown models are not.
func SupportsToolCalling(model string) bool {
	info := Lookup(model)
	return info != nil && info.SupportsTools
}

// ListModels returns all known models, optionally filtered by provider.
func ListModels(provider string) []ModelInfo {
	if provider == "" {
		result := make([]ModelInfo, len(Models))
		copy(result, Models)
		return result
	}
	var result []ModelInfo
	for _, m := range Models {
		if m.Provider == provider {
			result = append(result, m)
		}
	}
	return result
}
