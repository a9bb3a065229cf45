// Package mcp implements the Model Context Protocol (MCP) server.
// MCP uses JSON-RPC 2.0 over stdio for communication with AI assistants.
package mcp

import (
	"bytes"
	"fmt"
	"strconv"
)

// JSON-RPC 2.0 types

// RequestID is a JSON-RPC request id, either a string or an integer. The
// variant a request arrived with is preserved on the response; the zero
// RequestID is unset and marshals as null.
type RequestID struct {
	kind idKind
	str  string
	num  int64
}

type idKind int

const (
	idUnset idKind = iota
	idString
	idInt
)

// StringID makes a string-variant request id.
func StringID(s string) RequestID { return RequestID{kind: idString, str: s} }

// IntID makes an integer-variant request id.
func IntID(n int64) RequestID { return RequestID{kind: idInt, num: n} }

// IsSet reports whether the id carries a value.
func (id RequestID) IsSet() bool { return id.kind != idUnset }

// UnmarshalJSON decodes an id, keeping track of which variant it used.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = RequestID{}
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("invalid request id %s", data)
		}
		*id = StringID(s)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid request id %s", data)
	}
	*id = IntID(n)
	return nil
}

// MarshalJSON encodes the id in the same variant it was decoded from.
func (id RequestID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idString:
		return []byte(strconv.Quote(id.str)), nil
	case idInt:
		return []byte(strconv.FormatInt(id.num, 10)), nil
	default:
		return []byte("null"), nil
	}
}

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      RequestID `json:"id"`
	Method  string    `json:"method"`
	Params  Value     `json:"params"`
}

// Response represents a JSON-RPC 2.0 response. Result and Error are
// mutually exclusive; the id field is always emitted so a request that
// never yielded an id still gets an explicit null.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      RequestID `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *Error    `json:"error,omitempty"`
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC 2.0 error codes. Reserved for protocol conditions,
// never reused for application-level ones.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// MCP Protocol types

// InitializeResult contains the response to an initialize request.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    Capabilities   `json:"capabilities"`
	ServerInfo      Implementation `json:"serverInfo"`
}

// Capabilities describes what the server can do.
type Capabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability describes tool-related capabilities.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// Implementation identifies a client or server.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Tool represents an MCP tool that can be called.
type Tool struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema for tool parameters.
type JSONSchema struct {
	Type        string                `json:"type"`
	Properties  map[string]JSONSchema `json:"properties,omitempty"`
	Required    []string              `json:"required,omitempty"`
	Description string                `json:"description,omitempty"`
	Enum        []string              `json:"enum,omitempty"`
}

// ToolsListResult contains the response to a tools/list request.
type ToolsListResult struct {
	Tools []Tool `json:"tools"`
}

// ToolCallResult contains the response to a tools/call request.
type ToolCallResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content represents a piece of content in a tool response.
type Content struct {
	Type string `json:"type"` // "text"
	Text string `json:"text,omitempty"`
}

// TextContent creates a text content item.
func TextContent(text string) Content {
	return Content{Type: "text", Text: text}
}
