// spot is an MCP server exposing macOS Spotlight search to AI assistants.
//
// It communicates over stdio using JSON-RPC 2.0 per the MCP specification
// and shells out to mdfind/mdls for query execution. Logging goes to stderr
// (stdout is the protocol channel); set LOG_LEVEL=debug for verbose output.
//
// Usage:
//
//	spot [-tools search,count,meta]
//
// The -tools flag restricts the exposed tool set; by default all tools are
// enabled.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bbum/spot/internal/mcp"
	"github.com/bbum/spot/internal/spotlight"
)

func main() {
	toolsFlag := flag.String("tools", "", "comma-separated subset of tools to expose (default: all)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: getLogLevel(),
	}))

	engine := spotlight.NewMDFind(logger)

	server := mcp.NewServer(logger, splitTools(*toolsFlag))
	mcp.RegisterTools(server, engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func splitTools(list string) []string {
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func getLogLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
