package tools

import "github.com/petasbytes/go-builder/internal/fsops"

// Deps are the collaborators the tools act on.
type Deps struct {
	Sandbox *fsops.Sandbox
	Codes   CodeStore
}

// Registry returns all tool definitions wired for the agent. The set is fixed
// at startup; callers must not extend it at runtime.
func Registry(d Deps) []ToolDefinition {
	return []ToolDefinition{
		createDirectoryDefinition(d.Sandbox),
		createFileDefinition(d.Sandbox),
		updateFileDefinition(d.Sandbox),
		fetchCodeDefinition(d.Sandbox),
		listFilesDefinition(d.Sandbox),
		TaskCompletedDefinition,
		storeCodeDefinition(d.Codes),
		retrieveCodeDefinition(d.Codes),
		listAllFunctionsDefinition(d.Codes),
	}
}
