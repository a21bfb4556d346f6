package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is set at build time.
var Version = "dev"

// Server wraps the application service with MCP protocol handling.
type Server struct {
	svc    Service
	config Config
}

// New creates a new MCP server wrapping the given service.
func New(svc Service, cfg Config) *Server {
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = DefaultConfig().ConfigPath
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = DefaultConfig().HistoryPath
	}
	if cfg.ProfilePath == "" {
		cfg.ProfilePath = DefaultConfig().ProfilePath
	}

	return &Server{
		svc:    svc,
		config: cfg,
	}
}

// Run starts the MCP server and blocks until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	transport := &mcp.StdioTransport{}
	if err := s.buildServer().Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

// buildServer constructs the protocol server and registers all handlers.
// Tool and resource capabilities are derived from registration.
func (s *Server) buildServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "covrun",
			Version: Version,
		},
		nil,
	)
	s.registerTools(server)
	s.registerResources(server)
	return server
}

// registerTools adds all tool handlers to the server.
func (s *Server) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "run",
		Description: "Run the full coverage pipeline: clean stale artifacts, run instrumented cargo tests, aggregate with grcov, and correct the report with rust-covfix.",
	}, s.handleRun)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "report",
		Description: "Analyze an existing corrected LCOV report without running tests. Use this when a lcov.info file already exists.",
	}, s.handleReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record",
		Description: "Record current coverage to history for trend tracking. Call this after 'run' to save coverage data.",
	}, s.handleRecord)
}

// registerResources adds all resource handlers to the server.
func (s *Server) registerResources(server *mcp.Server) {
	server.AddResource(&mcp.Resource{
		URI:         "covrun://trend",
		Name:        "Coverage Trend",
		Description: "Shows coverage trends over time from recorded history",
		MIMEType:    "application/json",
	}, s.handleTrendResource)

	server.AddResource(&mcp.Resource{
		URI:         "covrun://config",
		Name:        "Current Configuration",
		Description: "Returns the detected workspace configuration and member crates",
		MIMEType:    "application/json",
	}, s.handleConfigResource)
}
