package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/managed-db-mcp/internal/common"
)

// maxMessageSize bounds a single JSON-RPC line on stdio.
const maxMessageSize = 10 * 1024 * 1024

// Caller answers tool calls. *Dispatcher implements it.
type Caller interface {
	Has(name string) bool
	Call(ctx context.Context, name string, args map[string]interface{}) Result
}

// NewMCPServer creates an mcp-go server with every dispatcher tool registered.
func NewMCPServer(d *Dispatcher, name, version string) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
	)
	d.RegisterTools(s)
	return s
}

// Server fronts an mcp-go server. It answers tools/call for names the
// server does not know with the caller's text result instead of a
// JSON-RPC error, and delegates every other message.
type Server struct {
	mcp    *server.MCPServer
	caller Caller
	logger *common.Logger
}

// NewServer wraps mcpServer; caller must be the dispatcher whose tools it serves.
func NewServer(mcpServer *server.MCPServer, caller Caller, logger *common.Logger) *Server {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Server{mcp: mcpServer, caller: caller, logger: logger}
}

type rpcResult struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result"`
}

// HandleMessage processes one JSON-RPC message. A nil return means no
// response is due (notifications).
func (s *Server) HandleMessage(ctx context.Context, raw json.RawMessage) interface{} {
	if resp, ok := s.interceptUnknownTool(ctx, raw); ok {
		return resp
	}
	return s.mcp.HandleMessage(ctx, raw)
}

func (s *Server) interceptUnknownTool(ctx context.Context, raw json.RawMessage) (interface{}, bool) {
	var msg struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
		Params struct {
			Name      string                 `json:"name"`
			Arguments map[string]interface{} `json:"arguments"`
		} `json:"params"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, false
	}
	if msg.Method != string(mcp.MethodToolsCall) || len(msg.ID) == 0 || s.caller.Has(msg.Params.Name) {
		return nil, false
	}

	result := s.caller.Call(ctx, msg.Params.Name, msg.Params.Arguments)
	return rpcResult{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      msg.ID,
		Result:  result.CallToolResult(),
	}, true
}

// ServeStdio reads newline-delimited JSON-RPC messages from in and writes
// responses to out, one message at a time, until in is exhausted or ctx ends.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
	encoder := json.NewEncoder(out)

	s.logger.Info().Msg("serving MCP over stdio")

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		raw := make(json.RawMessage, len(line))
		copy(raw, line)

		resp := s.HandleMessage(ctx, raw)
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stdin read error: %w", err)
	}
	return nil
}
