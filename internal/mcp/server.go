// Package mcp provides an MCP (Model Context Protocol) server exposing the
// simulation engine as a stable, side-effect-free query interface. External
// consumers (the interactive dashboard, report generators) call the tools on
// every parameter change; the server holds no state between calls, so
// repeated queries can never observe stale results.
package mcp

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server and registers the planetzero query tools.
type Server struct {
	server *sdk.Server
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "planetzero")
	Version string // Server version
}

// NewServer creates a new MCP server with the planetzero tools registered.
func NewServer(cfg *Config) (*Server, error) {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{server: mcpServer}
	s.registerTools()
	return s, nil
}

// registerTools registers all planetzero MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "planetzero_simulate",
		Description: "Run one month-by-month simulation and return the full step-record sequence plus a summary",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "planetzero_sweep",
		Description: "Run a policy/margin/horizon sweep and return the summary table",
	}, s.handleSweep)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "planetzero_select_best",
		Description: "Run a sweep and pick the best viable policy configuration at one horizon",
	}, s.handleSelectBest)
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}
