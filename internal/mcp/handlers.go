package mcp

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bobmcallan/managed-db-mcp/internal/client"
)

// Handler builds the control-plane request for one tool and renders its reply.
type Handler interface {
	BuildRequest(args map[string]interface{}) (client.Request, error)
	RenderResponse(args map[string]interface{}, resp *client.Response) (string, error)
}

// HandlerFuncs adapts a pair of functions to the Handler interface.
type HandlerFuncs struct {
	Build  func(args map[string]interface{}) (client.Request, error)
	Render func(args map[string]interface{}, resp *client.Response) (string, error)
}

func (h HandlerFuncs) BuildRequest(args map[string]interface{}) (client.Request, error) {
	return h.Build(args)
}

func (h HandlerFuncs) RenderResponse(args map[string]interface{}, resp *client.Response) (string, error) {
	return h.Render(args, resp)
}

// defaultHandlers returns the handler for every tool in Catalog.
func defaultHandlers() map[string]Handler {
	return map[string]Handler{
		ToolCreateProject:     HandlerFuncs{Build: buildCreateProject, Render: renderCreateProject},
		ToolListProjects:      HandlerFuncs{Build: buildListProjects, Render: renderListProjects},
		ToolGetProject:        HandlerFuncs{Build: projectRequest(http.MethodGet, ""), Render: renderGetProject},
		ToolDeleteProject:     HandlerFuncs{Build: buildDeleteProject, Render: renderDeleteProject},
		ToolRotateProjectKeys: HandlerFuncs{Build: projectRequest(http.MethodPost, "/rotate-keys"), Render: renderRotateKeys},
		ToolCreateTable:       HandlerFuncs{Build: buildCreateTable, Render: renderCreateTable},
		ToolRunMigration:      HandlerFuncs{Build: buildRunMigration, Render: bodyWithHeading("✅ Migration executed successfully!")},
		ToolBackupProject:     HandlerFuncs{Build: projectRequest(http.MethodPost, "/backup"), Render: renderBackup},
		ToolRestoreProject:    HandlerFuncs{Build: buildRestoreProject, Render: bodyWithHeading("✅ Restore initiated successfully!")},
		ToolGetProjectHealth:  HandlerFuncs{Build: projectRequest(http.MethodGet, "/health"), Render: bodyWithHeading("Project Health Status:")},
	}
}

func projectPath(projectID, suffix string) string {
	return "/projects/" + url.PathEscape(projectID) + suffix
}

// projectRequest builds a bodiless request against /projects/{project_id}{suffix}.
func projectRequest(method, suffix string) func(map[string]interface{}) (client.Request, error) {
	return func(args map[string]interface{}) (client.Request, error) {
		if err := requireArgs(args, "project_id"); err != nil {
			return client.Request{}, err
		}
		var a projectArgs
		if err := decodeArgs(args, &a); err != nil {
			return client.Request{}, err
		}
		return client.Request{Method: method, Path: projectPath(a.ProjectID, suffix)}, nil
	}
}

// bodyWithHeading renders a confirmation line followed by the response body.
func bodyWithHeading(heading string) func(map[string]interface{}, *client.Response) (string, error) {
	return func(_ map[string]interface{}, resp *client.Response) (string, error) {
		return heading + "\n\n" + formatBody(resp.Body), nil
	}
}

// --- create_project ---

func buildCreateProject(args map[string]interface{}) (client.Request, error) {
	if err := requireArgs(args, "name"); err != nil {
		return client.Request{}, err
	}
	var body createProjectArgs
	if err := decodeArgs(args, &body); err != nil {
		return client.Request{}, err
	}
	if body.Mode == nil {
		body.Mode = "db"
	}
	return client.Request{Method: http.MethodPost, Path: "/projects", Body: body}, nil
}

func renderCreateProject(_ map[string]interface{}, resp *client.Response) (string, error) {
	doc, err := decodeDocument(resp)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("✅ Project created successfully!\n\n")
	err = writeFields(&sb, doc, "", []field{
		required("ID", "id"),
		required("Name", "name"),
		required("Slug", "slug"),
		required("Mode", "mode"),
		required("Database", "db_name"),
		required("Connection URI", "connection_uri"),
		required("REST API URL", "rest_base_url"),
		required("Docs URL", "docs_url"),
		required("Anonymous API Key", "anon_key"),
		required("Service API Key", "service_key"),
		required("Created", "created_at"),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// --- list_projects ---

func buildListProjects(map[string]interface{}) (client.Request, error) {
	return client.Request{Method: http.MethodGet, Path: "/projects"}, nil
}

func renderListProjects(_ map[string]interface{}, resp *client.Response) (string, error) {
	var list struct {
		Projects []map[string]interface{} `json:"projects"`
	}
	if err := resp.Decode(&list); err != nil {
		return "", err
	}
	if len(list.Projects) == 0 {
		return "No projects found.", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d project(s):\n", len(list.Projects)))
	for _, p := range list.Projects {
		name, err := lookup(p, required("Name", "name"))
		if err != nil {
			return "", err
		}
		slug, err := lookup(p, required("Slug", "slug"))
		if err != nil {
			return "", err
		}
		sb.WriteString(fmt.Sprintf("\n• %s (%s)\n", name, slug))
		err = writeFields(&sb, p, "  ", []field{
			required("ID", "id"),
			required("Mode", "mode"),
			required("Database", "db_name"),
			required("REST API", "rest_base_url"),
			required("Created", "created_at"),
		})
		if err != nil {
			return "", err
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// --- get_project ---

func renderGetProject(_ map[string]interface{}, resp *client.Response) (string, error) {
	doc, err := decodeDocument(resp)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Project Details:\n\n")
	err = writeFields(&sb, doc, "", []field{
		required("ID", "id"),
		required("Name", "name"),
		required("Slug", "slug"),
		required("Mode", "mode"),
		required("Database", "db_name"),
		optional("Schema", "schema_name", notAvailable),
		required("Connection URI", "connection_uri"),
		required("REST API URL", "rest_base_url"),
		required("Docs URL", "docs_url"),
		optional("Anonymous Key", "anon_key", notAvailable),
		optional("Service Key", "service_key", notAvailable),
		required("Created", "created_at"),
		required("Updated", "updated_at"),
		optional("Deleted", "deleted_at", notAvailable),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// --- delete_project ---

func buildDeleteProject(args map[string]interface{}) (client.Request, error) {
	if err := requireArgs(args, "project_id"); err != nil {
		return client.Request{}, err
	}
	var a deleteProjectArgs
	if err := decodeArgs(args, &a); err != nil {
		return client.Request{}, err
	}
	return client.Request{
		Method: http.MethodDelete,
		Path:   projectPath(a.ProjectID, ""),
		Query:  url.Values{"hard": []string{strconv.FormatBool(a.Hard)}},
	}, nil
}

// renderDeleteProject ignores the body; the control plane may reply 204.
func renderDeleteProject(args map[string]interface{}, _ *client.Response) (string, error) {
	var a deleteProjectArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	deleteType := "soft deleted (marked for deletion)"
	if a.Hard {
		deleteType = "permanently deleted"
	}
	return fmt.Sprintf("✅ Project %s has been %s.", a.ProjectID, deleteType), nil
}

// --- rotate_project_keys ---

func renderRotateKeys(_ map[string]interface{}, resp *client.Response) (string, error) {
	doc, err := decodeDocument(resp)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("✅ Keys rotated successfully!\n\n")
	err = writeFields(&sb, doc, "", []field{
		required("Project ID", "id"),
		required("New Anonymous Key", "anon_key"),
		required("New Service Key", "service_key"),
		required("New JWT Secret", "jwt_secret"),
		required("Rotated At", "rotated_at"),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// --- create_table ---

func buildCreateTable(args map[string]interface{}) (client.Request, error) {
	if err := requireArgs(args, "project_id", "name", "columns"); err != nil {
		return client.Request{}, err
	}
	var body createTableArgs
	if err := decodeArgs(args, &body); err != nil {
		return client.Request{}, err
	}
	return client.Request{
		Method: http.MethodPost,
		Path:   projectPath(body.ProjectID, "/tables"),
		Body:   body,
	}, nil
}

func renderCreateTable(args map[string]interface{}, resp *client.Response) (string, error) {
	return fmt.Sprintf("✅ Table '%s' created successfully!\n\n%s", formatValue(args["name"]), formatBody(resp.Body)), nil
}

// --- run_migration ---

func buildRunMigration(args map[string]interface{}) (client.Request, error) {
	if err := requireArgs(args, "project_id", "sql"); err != nil {
		return client.Request{}, err
	}
	var body runMigrationArgs
	if err := decodeArgs(args, &body); err != nil {
		return client.Request{}, err
	}
	if body.StatementTimeoutMS == nil {
		body.StatementTimeoutMS = defaultStatementTimeoutMS
	}
	return client.Request{
		Method: http.MethodPost,
		Path:   projectPath(body.ProjectID, "/migrations"),
		Body:   body,
	}, nil
}

// --- backup_project ---

func renderBackup(_ map[string]interface{}, resp *client.Response) (string, error) {
	doc, err := decodeDocument(resp)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("✅ Backup created successfully!\n\n")
	err = writeFields(&sb, doc, "", []field{
		required("Artifact Path", "artifact_path"),
		required("Started At", "started_at"),
		optional("Completed At", "completed_at", "In progress..."),
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// --- restore_project ---

func buildRestoreProject(args map[string]interface{}) (client.Request, error) {
	if err := requireArgs(args, "project_id", "artifact_path"); err != nil {
		return client.Request{}, err
	}
	var body restoreProjectArgs
	if err := decodeArgs(args, &body); err != nil {
		return client.Request{}, err
	}
	return client.Request{
		Method: http.MethodPost,
		Path:   projectPath(body.ProjectID, "/restore"),
		Body:   body,
	}, nil
}
