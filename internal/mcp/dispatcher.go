package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/managed-db-mcp/internal/client"
	"github.com/bobmcallan/managed-db-mcp/internal/common"
	"github.com/bobmcallan/managed-db-mcp/internal/telemetry"
)

// APIClient sends one request to the Managed DB API.
type APIClient interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
}

// Dispatcher routes tool invocations to their handlers. Every invocation
// issues at most one API request and always yields a Result.
type Dispatcher struct {
	api      APIClient
	logger   *common.Logger
	observer *telemetry.Observer
	handlers map[string]Handler
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver records invocations through the given telemetry observer.
func WithObserver(o *telemetry.Observer) Option {
	return func(d *Dispatcher) { d.observer = o }
}

// NewDispatcher creates a dispatcher with a handler for every catalog tool.
func NewDispatcher(api APIClient, logger *common.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	d := &Dispatcher{
		api:      api,
		logger:   logger,
		handlers: defaultHandlers(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds or replaces the handler for name.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Has reports whether a handler is registered for name.
func (d *Dispatcher) Has(name string) bool {
	_, ok := d.handlers[name]
	return ok
}

// Call invokes the named tool. Unknown names yield a plain text result,
// and every failure is converted into an error Result. A correlation ID
// already on ctx is reused; otherwise a new one is minted.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]interface{}) Result {
	h, ok := d.handlers[name]
	if !ok {
		d.logger.Warn().Str("tool", name).Msg("unknown tool requested")
		return TextResult("Unknown tool: " + name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	correlationID := client.CorrelationID(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
		ctx = client.WithCorrelationID(ctx, correlationID)
	}
	logger := d.logger.WithCorrelationId(correlationID)

	ctx, inv := d.observer.Start(ctx, name)
	start := time.Now()
	result, status := d.invoke(ctx, h, args)
	inv.End(!result.IsError, status)

	if result.IsError {
		logger.Warn().Str("tool", name).Int("status", status).Dur("duration", time.Since(start)).Str("result", result.Text).Msg("tool call failed")
	} else {
		logger.Debug().Str("tool", name).Int("status", status).Dur("duration", time.Since(start)).Msg("tool call completed")
	}
	return result
}

// invoke runs one build/send/render cycle and reports the HTTP status seen, or 0.
func (d *Dispatcher) invoke(ctx context.Context, h Handler, args map[string]interface{}) (Result, int) {
	req, err := h.BuildRequest(args)
	if err != nil {
		return ErrorResult(err), 0
	}

	resp, err := d.api.Do(ctx, req)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return ErrorResult(err), apiErr.StatusCode
		}
		return ErrorResult(err), 0
	}

	text, err := h.RenderResponse(args, resp)
	if err != nil {
		return ErrorResult(err), resp.StatusCode
	}
	return TextResult(text), resp.StatusCode
}

// ToolHandler adapts the named tool to an mcp-go handler.
func (d *Dispatcher) ToolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return d.Call(ctx, name, request.GetArguments()).CallToolResult(), nil
	}
}

// RegisterTools adds every catalog tool that has a handler to s.
// Returns the number of tools registered.
func (d *Dispatcher) RegisterTools(s *server.MCPServer) int {
	count := 0
	for _, tool := range Catalog() {
		if !d.Has(tool.Name) {
			continue
		}
		s.AddTool(tool, d.ToolHandler(tool.Name))
		count++
	}
	return count
}
