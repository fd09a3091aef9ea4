// Package tools defines the tool contract and the fixed set of tools the
// model may call while building an application.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive the input schema from Go structs.
//   - Workspace tools: create_directory, create_file, update_file, fetch_code, list_files.
//   - Code store tools: store_code, retrieve_code, list_all_functions.
//   - task_completed: the completion signal that ends a run.
package tools
