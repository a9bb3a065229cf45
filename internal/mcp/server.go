package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "spot"
	ServerVersion   = "0.1.0"
)

// encodingFailure is the last-resort response line, written when encoding
// the real response (even an error response) fails.
const encodingFailure = `{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"failed to encode response"}}`

// ToolHandler runs one tool call and returns its textual output.
type ToolHandler func(ctx context.Context, args Value) (string, error)

// Server is an MCP server that communicates over stdio. The tool set is
// fixed at construction and read-only afterwards; requests are handled one
// at a time in arrival order.
type Server struct {
	tools    []Tool
	handlers map[string]ToolHandler
	enabled  map[string]bool
	logger   *slog.Logger
}

// NewServer creates a new MCP server. A non-empty enabled list restricts
// which registered tools are exposed; an empty list exposes all of them.
func NewServer(logger *slog.Logger, enabled []string) *Server {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	filter := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		filter[name] = true
	}
	return &Server{
		handlers: make(map[string]ToolHandler),
		enabled:  filter,
		logger:   logger,
	}
}

// RegisterTool registers a tool with the server. Tools outside the enabled
// set are dropped here, so tools/list and tools/call never see them.
func (s *Server) RegisterTool(tool Tool, handler ToolHandler) {
	if len(s.enabled) > 0 && !s.enabled[tool.Name] {
		s.logger.Debug("tool disabled", "name", tool.Name)
		return
	}
	s.tools = append(s.tools, tool)
	s.handlers[tool.Name] = handler
	s.logger.Debug("registered tool", "name", tool.Name)
}

// Run starts the server, reading from stdin and writing to stdout.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithIO(ctx, os.Stdin, os.Stdout)
}

// RunWithIO starts the server with custom I/O streams (useful for testing).
// Each input line yields exactly one output line, written before the next
// line is read; blank lines are skipped without a response. The loop ends
// at end of input.
func (s *Server) RunWithIO(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large messages
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	s.logger.Info("server starting", "version", ServerVersion)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.handleMessage(ctx, line)
		if err := s.writeResponse(out, resp); err != nil {
			s.logger.Error("failed to write response", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

func (s *Server) handleMessage(ctx context.Context, data []byte) *Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		s.logger.Error("failed to parse request", "error", err)
		return &Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: ParseError, Message: "Parse error"},
		}
	}

	s.logger.Debug("handling request", "method", req.Method)

	result, err := s.dispatch(ctx, req.Method, req.Params)
	if err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   err,
		}
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

func (s *Server) dispatch(ctx context.Context, method string, params Value) (any, *Error) {
	switch method {
	case "initialize":
		return s.handleInitialize(params), nil
	case "initialized", "notifications/initialized":
		// Notification; acknowledged with an empty object so every line
		// in still gets a line out.
		return struct{}{}, nil
	case "tools/list":
		return &ToolsListResult{Tools: s.toolList()}, nil
	case "tools/call":
		return s.handleToolsCall(ctx, params)
	default:
		return nil, &Error{Code: MethodNotFound, Message: fmt.Sprintf("Method not found: %s", method)}
	}
}

func (s *Server) handleInitialize(params Value) *InitializeResult {
	if client, ok := params.Get("clientInfo"); ok {
		name, _ := valueString(client, "name")
		version, _ := valueString(client, "version")
		s.logger.Info("initialized", "client", name, "clientVersion", version)
	}

	return &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: Capabilities{
			Tools: &ToolsCapability{},
		},
		ServerInfo: Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
	}
}

func (s *Server) toolList() []Tool {
	tools := make([]Tool, len(s.tools))
	copy(tools, s.tools)
	return tools
}

func (s *Server) handleToolsCall(ctx context.Context, params Value) (*ToolCallResult, *Error) {
	name, ok := valueString(params, "name")
	if !ok {
		return nil, &Error{Code: InvalidParams, Message: "tools/call params missing tool name"}
	}

	args, ok := params.Get("arguments")
	if !ok {
		args = Object()
	}

	tool, found := s.findTool(name)
	if !found {
		return nil, &Error{Code: MethodNotFound, Message: fmt.Sprintf("Unknown tool: %s", name)}
	}

	for _, key := range tool.InputSchema.Required {
		if _, present := args.Get(key); !present {
			return nil, &Error{Code: InvalidParams, Message: fmt.Sprintf("missing required argument: %s", key)}
		}
	}

	s.logger.Debug("calling tool", "name", name)

	text, err := s.handlers[name](ctx, args)
	if err != nil {
		s.logger.Error("tool error", "name", name, "error", err)
		return nil, &Error{Code: InternalError, Message: err.Error()}
	}

	return &ToolCallResult{Content: []Content{TextContent(text)}}, nil
}

func (s *Server) findTool(name string) (Tool, bool) {
	for _, t := range s.tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

func (s *Server) writeResponse(out io.Writer, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		data = []byte(encodingFailure)
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

// valueString reads a string field off an object value.
func valueString(obj Value, key string) (string, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return "", false
	}
	return v.AsString()
}
