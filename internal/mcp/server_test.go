package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// runLines feeds request lines to a server and returns one decoded
// response per non-blank line.
func runLines(t *testing.T, server *Server, lines ...string) []Response {
	t.Helper()

	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = server.RunWithIO(ctx, strings.NewReader(strings.Join(lines, "\n")+"\n"), &buf)
		close(done)
	}()

	// Input is finite; wait for the loop to drain it.
	<-done

	var responses []Response
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var resp Response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("failed to decode response line %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func echoTool(name string) (Tool, ToolHandler) {
	return Tool{
			Name:        name,
			Description: "Echo the input",
			InputSchema: JSONSchema{Type: "object"},
		}, func(ctx context.Context, args Value) (string, error) {
			return "ok", nil
		}
}

func TestServer_Initialize(t *testing.T) {
	server := NewServer(nil, nil)

	input := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`
	responses := runLines(t, server, input)

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	resp := responses[0]
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	resultMap, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type: %T", resp.Result)
	}
	if resultMap["protocolVersion"] != ProtocolVersion {
		t.Errorf("expected protocol version %s, got %v", ProtocolVersion, resultMap["protocolVersion"])
	}
	serverInfo, _ := resultMap["serverInfo"].(map[string]any)
	if serverInfo["name"] != ServerName {
		t.Errorf("expected server name %s, got %v", ServerName, serverInfo["name"])
	}
}

func TestServer_ToolsList(t *testing.T) {
	server := NewServer(nil, nil)
	server.RegisterTool(echoTool("alpha"))
	server.RegisterTool(echoTool("beta"))

	responses := runLines(t, server, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	resp := responses[0]
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	id, _ := json.Marshal(resp.ID)
	if string(id) != "1" {
		t.Errorf("expected id 1, got %s", id)
	}

	resultMap, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type: %T", resp.Result)
	}
	tools, ok := resultMap["tools"].([]any)
	if !ok {
		t.Fatal("tools not found in result")
	}
	if len(tools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(tools))
	}
	// Registration order is preserved.
	first, _ := tools[0].(map[string]any)
	if first["name"] != "alpha" {
		t.Errorf("expected alpha first, got %v", first["name"])
	}
}

func TestServer_ToolsList_Filtered(t *testing.T) {
	server := NewServer(nil, []string{"beta"})
	server.RegisterTool(echoTool("alpha"))
	server.RegisterTool(echoTool("beta"))

	responses := runLines(t, server, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	resultMap := responses[0].Result.(map[string]any)
	tools := resultMap["tools"].([]any)
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool after filtering, got %d", len(tools))
	}
	only := tools[0].(map[string]any)
	if only["name"] != "beta" {
		t.Errorf("expected beta, got %v", only["name"])
	}

	// The filtered-out tool is not callable either.
	call := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"alpha","arguments":{}}}`
	responses = runLines(t, server, call)
	if responses[0].Error == nil || responses[0].Error.Code != MethodNotFound {
		t.Errorf("expected %d for filtered tool, got %+v", MethodNotFound, responses[0].Error)
	}
}

func TestServer_ToolsCall(t *testing.T) {
	server := NewServer(nil, nil)
	server.RegisterTool(Tool{
		Name:        "echo",
		Description: "Echo the q argument",
		InputSchema: JSONSchema{
			Type:       "object",
			Properties: map[string]JSONSchema{"q": {Type: "string"}},
			Required:   []string{"q"},
		},
	}, func(ctx context.Context, args Value) (string, error) {
		q, _ := valueString(args, "q")
		return "echoed: " + q, nil
	})

	responses := runLines(t, server,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo","arguments":{"q":"hello"}}}`)

	resp := responses[0]
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	resultMap := resp.Result.(map[string]any)
	content, ok := resultMap["content"].([]any)
	if !ok || len(content) != 1 {
		t.Fatalf("expected one content item, got %v", resultMap["content"])
	}
	item := content[0].(map[string]any)
	if item["type"] != "text" || item["text"] != "echoed: hello" {
		t.Errorf("unexpected content item: %v", item)
	}
}

func TestServer_ToolsCall_UnknownTool(t *testing.T) {
	server := NewServer(nil, nil)
	server.RegisterTool(echoTool("echo"))

	responses := runLines(t, server,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope","arguments":{}}}`)

	resp := responses[0]
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
	if resp.Error.Code != MethodNotFound {
		t.Errorf("expected error code %d, got %d", MethodNotFound, resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "nope") {
		t.Errorf("expected tool name in message, got %q", resp.Error.Message)
	}
}

func TestServer_ToolsCall_MissingRequiredArgument(t *testing.T) {
	server := NewServer(nil, nil)
	server.RegisterTool(Tool{
		Name: "needy",
		InputSchema: JSONSchema{
			Type:       "object",
			Properties: map[string]JSONSchema{"q": {Type: "string"}},
			Required:   []string{"q"},
		},
	}, func(ctx context.Context, args Value) (string, error) {
		return "ok", nil
	})

	// arguments omitted entirely, defaults to an empty object
	responses := runLines(t, server,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"needy"}}`)

	resp := responses[0]
	if resp.Error == nil {
		t.Fatal("expected error for missing required argument")
	}
	if resp.Error.Code != InvalidParams {
		t.Errorf("expected error code %d, got %d", InvalidParams, resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "q") {
		t.Errorf("expected missing key in message, got %q", resp.Error.Message)
	}
}

func TestServer_MethodNotFound(t *testing.T) {
	server := NewServer(nil, nil)

	responses := runLines(t, server, `{"jsonrpc":"2.0","id":1,"method":"unknown/method","params":{}}`)

	resp := responses[0]
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != MethodNotFound {
		t.Errorf("expected error code %d, got %d", MethodNotFound, resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "unknown/method") {
		t.Errorf("expected method name in message, got %q", resp.Error.Message)
	}
}

func TestServer_InvalidJSON(t *testing.T) {
	server := NewServer(nil, nil)

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_ = server.RunWithIO(context.Background(), strings.NewReader("{invalid json\n"), &buf)
		close(done)
	}()
	<-done

	line := strings.TrimSpace(buf.String())
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if string(decoded["id"]) != "null" {
		t.Errorf("parse error response id = %s, want null", decoded["id"])
	}

	var rpcErr Error
	if err := json.Unmarshal(decoded["error"], &rpcErr); err != nil {
		t.Fatalf("missing error object: %v", err)
	}
	if rpcErr.Code != ParseError {
		t.Errorf("expected error code %d, got %d", ParseError, rpcErr.Code)
	}
}

func TestServer_NotificationAck(t *testing.T) {
	server := NewServer(nil, nil)

	for _, method := range []string{"initialized", "notifications/initialized"} {
		responses := runLines(t, server, `{"jsonrpc":"2.0","method":"`+method+`"}`)
		if len(responses) != 1 {
			t.Fatalf("%s: expected an acknowledgement line", method)
		}
		resp := responses[0]
		if resp.Error != nil {
			t.Errorf("%s: unexpected error %v", method, resp.Error)
		}
		result, ok := resp.Result.(map[string]any)
		if !ok || len(result) != 0 {
			t.Errorf("%s: expected empty object result, got %v", method, resp.Result)
		}
	}
}

func TestServer_IDEchoPreservesVariant(t *testing.T) {
	server := NewServer(nil, nil)

	responses := runLines(t, server,
		`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":"seven","method":"tools/list"}`)

	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	first, _ := json.Marshal(responses[0].ID)
	second, _ := json.Marshal(responses[1].ID)
	if string(first) != "7" {
		t.Errorf("integer id echoed as %s", first)
	}
	if string(second) != `"seven"` {
		t.Errorf("string id echoed as %s", second)
	}
}

func TestServer_BlankLinesSkipped(t *testing.T) {
	server := NewServer(nil, nil)

	var buf bytes.Buffer
	input := "\n\n" + `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n\n"
	done := make(chan struct{})
	go func() {
		_ = server.RunWithIO(context.Background(), strings.NewReader(input), &buf)
		close(done)
	}()
	<-done

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Errorf("expected exactly 1 response line, got %d: %q", len(lines), buf.String())
	}
}

func TestServer_ResponsesInRequestOrder(t *testing.T) {
	server := NewServer(nil, nil)

	responses := runLines(t, server,
		`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":2,"method":"no/such"}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/list"}`)

	if len(responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(responses))
	}
	for i, want := range []string{"1", "2", "3"} {
		id, _ := json.Marshal(responses[i].ID)
		if string(id) != want {
			t.Errorf("response %d has id %s, want %s", i, id, want)
		}
	}
}
