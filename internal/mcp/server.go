// Package mcp provides an MCP (Model Context Protocol) server for dda.
package mcp

import (
	"context"
	"log/slog"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dda-sim/dda/internal/logging"
	"github.com/dda-sim/dda/internal/ratelimit"
)

// Server wraps the MCP SDK server and exposes the simulator as tools.
type Server struct {
	server       *sdk.Server
	toolLimiters ratelimit.ToolLimiters
	auditLogger  *AuditLogger
	logger       *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name     string       // Server name (e.g., "dda")
	Version  string       // Server version
	AuditDir string       // Directory for .dda/audit.jsonl; empty disables auditing
	Logger   *slog.Logger // Operational logger; nil discards
}

// NewServer creates a new MCP server with dda tools.
func NewServer(cfg *Config) (*Server, error) {
	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Server{
		server:       mcpServer,
		toolLimiters: ratelimit.NewToolLimiters(),
		logger:       logger,
	}
	if cfg.AuditDir != "" {
		s.auditLogger = NewAuditLogger(cfg.AuditDir)
	}

	s.registerTools()
	return s, nil
}

// Run serves the tools over stdio. It blocks until the client disconnects or
// ctx is cancelled; the caller owns signal handling.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	if ctx.Err() != nil {
		s.logger.Info("mcp server stopped", "reason", context.Cause(ctx))
		err = nil
	}

	s.auditLogger.Close()
	return err
}

// Close releases resources held by the server.
func (s *Server) Close() error {
	return s.auditLogger.Close()
}
