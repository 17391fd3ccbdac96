package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names served by the adapter, in catalog order.
const (
	ToolCreateProject     = "create_project"
	ToolListProjects      = "list_projects"
	ToolGetProject        = "get_project"
	ToolDeleteProject     = "delete_project"
	ToolRotateProjectKeys = "rotate_project_keys"
	ToolCreateTable       = "create_table"
	ToolRunMigration      = "run_migration"
	ToolBackupProject     = "backup_project"
	ToolRestoreProject    = "restore_project"
	ToolGetProjectHealth  = "get_project_health"
)

// defaultStatementTimeoutMS is sent with run_migration when the caller omits a timeout.
const defaultStatementTimeoutMS = 30000

// Catalog returns the static, ordered list of tool descriptors.
func Catalog() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolCreateProject,
			mcp.WithDescription("Create a new managed database project with isolated database, roles, and auto-generated REST API"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Human-readable project name (e.g., 'My Analytics DB')")),
			mcp.WithString("mode",
				mcp.Enum("db", "schema"),
				mcp.DefaultString("db"),
				mcp.Description("Isolation mode: 'db' creates separate database, 'schema' creates schema in shared database"),
			),
			mcp.WithString("description", mcp.Description("Optional project description")),
		),
		mcp.NewTool(ToolListProjects,
			mcp.WithDescription("List all managed database projects"),
		),
		mcp.NewTool(ToolGetProject,
			mcp.WithDescription("Get detailed information about a specific project including connection details and API keys"),
			projectIDParam("UUID of the project"),
		),
		mcp.NewTool(ToolDeleteProject,
			mcp.WithDescription("Delete a project (soft delete by default, use hard=true to permanently remove database)"),
			projectIDParam("UUID of the project to delete"),
			mcp.WithBoolean("hard",
				mcp.DefaultBool(false),
				mcp.Description("If true, permanently deletes database and PostgREST container. If false, marks as deleted but keeps data."),
			),
		),
		mcp.NewTool(ToolRotateProjectKeys,
			mcp.WithDescription("Rotate JWT secret and API keys (anon_key, service_key) for a project"),
			projectIDParam("UUID of the project"),
		),
		mcp.NewTool(ToolCreateTable,
			mcp.WithDescription("Create a table in a project database with columns, indexes, and optional RLS policies"),
			projectIDParam("UUID of the project"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Table name")),
			mcp.WithArray("columns", mcp.Required(), mcp.Description("Table columns"), mcp.Items(columnSchema)),
			mcp.WithArray("indexes", mcp.Description("Optional indexes"), mcp.Items(indexSchema)),
			mcp.WithArray("rls_policies", mcp.Description("Optional Row Level Security policies"), mcp.Items(rlsPolicySchema)),
		),
		mcp.NewTool(ToolRunMigration,
			mcp.WithDescription("Execute arbitrary SQL migration on a project database"),
			projectIDParam("UUID of the project"),
			mcp.WithString("sql", mcp.Required(), mcp.Description("SQL statements to execute")),
			mcp.WithNumber("statement_timeout_ms",
				mcp.DefaultNumber(defaultStatementTimeoutMS),
				mcp.Description("Statement timeout in milliseconds"),
			),
		),
		mcp.NewTool(ToolBackupProject,
			mcp.WithDescription("Create a pg_dump backup of a project database"),
			projectIDParam("UUID of the project to backup"),
		),
		mcp.NewTool(ToolRestoreProject,
			mcp.WithDescription("Restore a project database from a backup artifact"),
			projectIDParam("UUID of the project to restore"),
			mcp.WithString("artifact_path", mcp.Required(), mcp.Description("Path to backup artifact file")),
		),
		mcp.NewTool(ToolGetProjectHealth,
			mcp.WithDescription("Check health status of a specific project's database and PostgREST API"),
			projectIDParam("UUID of the project"),
		),
	}
}

func projectIDParam(description string) mcp.ToolOption {
	return mcp.WithString("project_id", mcp.Required(), mcp.Description(description))
}

var columnSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":      map[string]interface{}{"type": "string"},
		"data_type": map[string]interface{}{"type": "string", "description": "PostgreSQL data type (e.g., 'text', 'integer', 'timestamptz')"},
		"nullable":  map[string]interface{}{"type": "boolean", "default": true},
		"default":   map[string]interface{}{"type": "string", "description": "Default value expression"},
	},
	"required": []string{"name", "data_type"},
}

var indexSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":    map[string]interface{}{"type": "string"},
		"columns": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"unique":  map[string]interface{}{"type": "boolean", "default": false},
	},
	"required": []string{"name", "columns"},
}

var rlsPolicySchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":       map[string]interface{}{"type": "string"},
		"command":    map[string]interface{}{"type": "string", "enum": []string{"SELECT", "INSERT", "UPDATE", "DELETE", "ALL"}},
		"expression": map[string]interface{}{"type": "string", "description": "SQL expression that returns boolean"},
		"with_check": map[string]interface{}{"type": "string", "description": "Optional WITH CHECK expression for INSERT/UPDATE"},
	},
	"required": []string{"name", "command", "expression"},
}
