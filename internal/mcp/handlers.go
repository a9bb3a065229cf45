package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bbum/spot/internal/spotlight"
)

const defaultSearchLimit = 100

// RegisterTools registers the Spotlight tools with the MCP server.
func RegisterTools(s *Server, engine spotlight.Engine) {
	s.RegisterTool(Tool{
		Name:        "search",
		Description: "Search the Spotlight index. Accepts shorthand tokens (@name:, @content:, @kind:, @type:, @tree:, @mod:, @created:, @size:), bare filename globs, or a raw kMDItem query.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]JSONSchema{
				"q": {
					Type:        "string",
					Description: "Query in shorthand or native Spotlight syntax",
				},
				"in": {
					Type:        "string",
					Description: "Comma-separated directory scopes (optional)",
				},
				"n": {
					Type:        "number",
					Description: "Maximum number of results (default 100)",
				},
				"sort": {
					Type:        "string",
					Description: "Sort key: name, date, size, created, or a raw attribute. Leading - for descending",
				},
				"fmt": {
					Type:        "string",
					Description: "Output format",
					Enum:        []string{"compact", "full", "paths"},
				},
			},
			Required: []string{"q"},
		},
	}, makeSearchHandler(engine))

	s.RegisterTool(Tool{
		Name:        "count",
		Description: "Count Spotlight matches for a query without listing them.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]JSONSchema{
				"q": {
					Type:        "string",
					Description: "Query in shorthand or native Spotlight syntax",
				},
				"in": {
					Type:        "string",
					Description: "Comma-separated directory scopes (optional)",
				},
			},
			Required: []string{"q"},
		},
	}, makeCountHandler(engine))

	s.RegisterTool(Tool{
		Name:        "meta",
		Description: "Dump the Spotlight metadata attributes of a single file.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]JSONSchema{
				"path": {
					Type:        "string",
					Description: "Filesystem path of an indexed file",
				},
			},
			Required: []string{"path"},
		},
	}, makeMetaHandler(engine))
}

// Handler factories

func makeSearchHandler(engine spotlight.Engine) ToolHandler {
	return func(ctx context.Context, args Value) (string, error) {
		q, ok := valueString(args, "q")
		if !ok {
			return "", fmt.Errorf("q must be a string")
		}

		opts := spotlight.SearchOptions{Limit: defaultSearchLimit}
		opts.Scopes = splitScopes(args)
		if n, ok := valueInt(args, "n"); ok {
			opts.Limit = int(n)
		}
		if spec, ok := valueString(args, "sort"); ok && spec != "" {
			opts.SortAttr, opts.Descending = spotlight.ParseSortSpec(spec)
		}

		format := spotlight.FormatCompact
		if f, ok := valueString(args, "fmt"); ok && f != "" {
			format = f
		}

		results, err := engine.Search(ctx, spotlight.Translate(q), opts)
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			return "No results", nil
		}
		return spotlight.FormatResults(results, format), nil
	}
}

func makeCountHandler(engine spotlight.Engine) ToolHandler {
	return func(ctx context.Context, args Value) (string, error) {
		q, ok := valueString(args, "q")
		if !ok {
			return "", fmt.Errorf("q must be a string")
		}

		n, err := engine.Count(ctx, spotlight.Translate(q), splitScopes(args))
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	}
}

func makeMetaHandler(engine spotlight.Engine) ToolHandler {
	return func(ctx context.Context, args Value) (string, error) {
		path, ok := valueString(args, "path")
		if !ok {
			return "", fmt.Errorf("path must be a string")
		}
		return engine.Metadata(ctx, path)
	}
}

// splitScopes parses the optional comma-separated "in" argument.
func splitScopes(args Value) []string {
	raw, ok := valueString(args, "in")
	if !ok || raw == "" {
		return nil
	}
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// valueInt reads an integer field off an object value.
func valueInt(obj Value, key string) (int64, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}
