package mcp

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bobmcallan/managed-db-mcp/internal/client"
)

// Result is the outcome of one tool invocation, rendered to a single text block.
type Result struct {
	Text    string
	IsError bool
}

// TextResult wraps successful output.
func TextResult(text string) Result {
	return Result{Text: text}
}

// ErrorResult renders err for the calling agent. Control-plane rejections
// carry their status code and detail; everything else its message.
func ErrorResult(err error) Result {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return Result{
			Text:    fmt.Sprintf("❌ API Error (%d): %s", apiErr.StatusCode, apiErr.Detail),
			IsError: true,
		}
	}
	return Result{Text: fmt.Sprintf("❌ Error: %v", err), IsError: true}
}

// CallToolResult converts the result to its MCP wire form.
func (r Result) CallToolResult() *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(r.Text),
		},
		IsError: r.IsError,
	}
}
