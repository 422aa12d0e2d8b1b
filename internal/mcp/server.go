// Package mcp provides an MCP (Model Context Protocol) server for netgen.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/logging"
	"github.com/nvandessel/netgen/internal/ratelimit"
	"github.com/nvandessel/netgen/internal/store"
)

// Server wraps the MCP SDK server. The last generated topology is kept in
// its store so graph and event tools can read it back.
type Server struct {
	server       *sdk.Server
	store        store.GraphStore
	root         string
	seed         int64
	strict       bool
	logger       *slog.Logger
	auditLogger  *AuditLogger
	toolLimiters ratelimit.ToolLimiters
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "netgen")
	Version string // Server version
	Root    string // Project root; model paths are confined to it

	// Seed and Strict are the defaults for tools that do not set them.
	Seed   int64
	Strict bool

	// Store keeps generated topologies. Nil uses an in-memory store.
	Store store.GraphStore

	// Logger receives engine logs. Nil discards.
	Logger *slog.Logger
}

// NewServer creates a new MCP server with netgen tools.
func NewServer(cfg *Config) (*Server, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("server root is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving server root: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("server root %s is not a directory", cfg.Root)
	}

	graphStore := cfg.Store
	if graphStore == nil {
		graphStore = store.NewInMemoryGraphStore()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	seed := cfg.Seed
	if seed == 0 {
		seed = constants.DefaultSeed
	}

	s := &Server{
		server:       mcpServer,
		store:        graphStore,
		root:         root,
		seed:         seed,
		strict:       cfg.Strict,
		logger:       logging.OrDiscard(cfg.Logger),
		auditLogger:  NewAuditLogger(root),
		toolLimiters: ratelimit.NewToolLimiters(),
	}
	s.registerTools()
	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := s.server.Run(ctx, &sdk.StdioTransport{})
	s.Close()
	return err
}

// Close closes the store and the audit log.
func (s *Server) Close() error {
	auditErr := s.auditLogger.Close()
	if err := s.store.Close(); err != nil {
		return err
	}
	return auditErr
}
