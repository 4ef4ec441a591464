package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"fsserver/internal/config"
	"fsserver/internal/filemanager"
	"fsserver/internal/logging"
	"fsserver/internal/sandbox"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// Server represents an MCP server instance serving the configured roots.
type Server struct {
	config      *config.Config
	logger      *logging.AppLogger
	fileManager *filemanager.FileManager
	resources   *ResourceProvider
	tools       *ToolExecutor
	dispatcher  *Dispatcher
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, logger *logging.AppLogger) *Server {
	return &Server{
		config: cfg,
		logger: logger,
	}
}

// InitializeComponents builds the sandbox, file manager, providers and
// dispatcher from the configuration. It is idempotent.
func (s *Server) InitializeComponents() error {
	if s.dispatcher != nil {
		return nil
	}

	if s.config == nil {
		return errors.New("configuration is required")
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	sb, err := sandbox.New(s.config.Roots()...)
	if err != nil {
		return fmt.Errorf("failed to initialize sandbox: %w", err)
	}

	s.fileManager = filemanager.NewFileManager(sb, s.config.Policy(), s.logger)
	s.resources = NewResourceProvider(s.fileManager, s.logger)

	s.tools, err = NewToolExecutor(s.fileManager, s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tools: %w", err)
	}

	s.dispatcher = NewDispatcher(s.resources, s.tools, s.config.ServerName, s.config.ServerVersion, s.logger)

	s.logger.Info("MCP server components initialized",
		"roots", sb.Paths(),
		"tools", len(s.tools.Tools()),
	)
	return nil
}

// Start initializes the server and serves stdin/stdout until stdin closes
// or ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve runs the stdio transport on the given streams.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Initializing MCP server")

	if err := s.InitializeComponents(); err != nil {
		return err
	}

	s.logger.Info("MCP server ready, serving stdio", "name", s.config.ServerName, "version", s.config.ServerVersion)

	err := ServeStdio(ctx, s.dispatcher, in, out, s.logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the MCP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping MCP server")
	// Cancelling the context passed to Start ends the transport.
	return nil
}

// Dispatcher returns the request dispatcher, initializing components first.
func (s *Server) Dispatcher() (*Dispatcher, error) {
	if err := s.InitializeComponents(); err != nil {
		return nil, err
	}
	return s.dispatcher, nil
}

// Tools returns the registered tool descriptors.
func (s *Server) Tools() ([]mcpgo.Tool, error) {
	if err := s.InitializeComponents(); err != nil {
		return nil, err
	}
	return s.tools.Tools(), nil
}

// CallTool runs one tool outside of the JSON-RPC transport.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*mcpgo.CallToolResult, error) {
	if err := s.InitializeComponents(); err != nil {
		return nil, err
	}
	return s.tools.Call(ctx, name, args)
}
