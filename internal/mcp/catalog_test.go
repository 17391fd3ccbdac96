package mcp

import (
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

func findTool(t *testing.T, name string) mcpgo.Tool {
	t.Helper()
	for _, tool := range Catalog() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not in catalog", name)
	return mcpgo.Tool{}
}

func property(t *testing.T, tool mcpgo.Tool, name string) map[string]interface{} {
	t.Helper()
	raw, ok := tool.InputSchema.Properties[name]
	if !ok {
		t.Fatalf("expected %q in %s schema properties", name, tool.Name)
	}
	prop, ok := raw.(map[string]interface{})
	if !ok {
		t.Fatalf("expected %s.%s to be a schema object, got %T", tool.Name, name, raw)
	}
	return prop
}

func TestCatalog_OrderAndUniqueness(t *testing.T) {
	want := []string{
		"create_project", "list_projects", "get_project", "delete_project",
		"rotate_project_keys", "create_table", "run_migration", "backup_project",
		"restore_project", "get_project_health",
	}

	tools := Catalog()
	if len(tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(tools))
	}

	seen := make(map[string]bool)
	for i, tool := range tools {
		if tool.Name != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], tool.Name)
		}
		if seen[tool.Name] {
			t.Errorf("duplicate tool name %q", tool.Name)
		}
		seen[tool.Name] = true
		if tool.Description == "" {
			t.Errorf("tool %q has no description", tool.Name)
		}
	}
}

func TestCatalog_RequiredFields(t *testing.T) {
	cases := map[string][]string{
		ToolCreateProject:     {"name"},
		ToolListProjects:      nil,
		ToolGetProject:        {"project_id"},
		ToolDeleteProject:     {"project_id"},
		ToolRotateProjectKeys: {"project_id"},
		ToolCreateTable:       {"project_id", "name", "columns"},
		ToolRunMigration:      {"project_id", "sql"},
		ToolBackupProject:     {"project_id"},
		ToolRestoreProject:    {"project_id", "artifact_path"},
		ToolGetProjectHealth:  {"project_id"},
	}

	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			got := findTool(t, name).InputSchema.Required
			if len(got) != len(want) {
				t.Fatalf("expected required %v, got %v", want, got)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("expected required %v, got %v", want, got)
				}
			}
		})
	}
}

func TestCatalog_Defaults(t *testing.T) {
	mode := property(t, findTool(t, ToolCreateProject), "mode")
	if mode["default"] != "db" {
		t.Errorf("expected mode default 'db', got %v", mode["default"])
	}
	enum, ok := mode["enum"].([]string)
	if !ok || len(enum) != 2 || enum[0] != "db" || enum[1] != "schema" {
		t.Errorf("expected mode enum [db schema], got %v", mode["enum"])
	}

	hard := property(t, findTool(t, ToolDeleteProject), "hard")
	if hard["default"] != false {
		t.Errorf("expected hard default false, got %v", hard["default"])
	}
	if hard["type"] != "boolean" {
		t.Errorf("expected hard to be boolean, got %v", hard["type"])
	}

	timeout := property(t, findTool(t, ToolRunMigration), "statement_timeout_ms")
	if timeout["default"] != float64(defaultStatementTimeoutMS) {
		t.Errorf("expected statement_timeout_ms default %d, got %v", defaultStatementTimeoutMS, timeout["default"])
	}
}

func TestCatalog_CreateTableArrays(t *testing.T) {
	tool := findTool(t, ToolCreateTable)
	for _, name := range []string{"columns", "indexes", "rls_policies"} {
		prop := property(t, tool, name)
		if prop["type"] != "array" {
			t.Errorf("expected %s to be an array, got %v", name, prop["type"])
		}
		if _, ok := prop["items"]; !ok {
			t.Errorf("expected %s to declare an item schema", name)
		}
	}
}

func TestCatalog_ListProjectsHasNoProperties(t *testing.T) {
	tool := findTool(t, ToolListProjects)
	if len(tool.InputSchema.Properties) != 0 {
		t.Errorf("expected no properties, got %v", tool.InputSchema.Properties)
	}
}

func TestCatalog_EveryToolHasHandler(t *testing.T) {
	d := NewDispatcher(nil, nil)
	for _, tool := range Catalog() {
		if !d.Has(tool.Name) {
			t.Errorf("no handler registered for %q", tool.Name)
		}
	}
}
