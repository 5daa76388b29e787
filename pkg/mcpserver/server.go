package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/karthik-ravi-1537/mcp-demo/internal/metrics"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

// Options configures a server.
type Options struct {
	Name        string
	Description string
	Timeout     time.Duration
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
}

// Server composes a tool registry with a dispatcher. Concrete servers
// construct one, register their tool set, and hand it to a transport.
// Handle is the single execution entry point and Describe the single
// discovery entry point; both are safe for concurrent use once
// registration is done.
type Server struct {
	name        string
	description string
	registry    *Registry
	dispatcher  *Dispatcher
	logger      zerolog.Logger
}

// NewServer creates a server with an empty registry.
func NewServer(opts Options) (*Server, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if opts.Description == "" {
		return nil, fmt.Errorf("server description is required")
	}

	logger := opts.Logger.With().Str("server", opts.Name).Logger()
	registry := NewRegistry()

	return &Server{
		name:        opts.Name,
		description: opts.Description,
		registry:    registry,
		dispatcher:  NewDispatcher(registry, opts.Name, opts.Timeout, logger, opts.Metrics),
		logger:      logger,
	}, nil
}

// Name returns the server name.
func (s *Server) Name() string { return s.name }

// Description returns the server description.
func (s *Server) Description() string { return s.description }

// RegisterTool adds a tool to the server.
func (s *Server) RegisterTool(def protocol.ToolDefinition, handler ToolHandler) error {
	if err := s.registry.Register(def, handler); err != nil {
		return err
	}
	s.logger.Info().Str("tool", def.Name).Msg("Tool registered")
	return nil
}

// Handle dispatches a tool call. It always returns a well-formed
// response message and never panics, whatever the call contains.
func (s *Server) Handle(ctx context.Context, call protocol.ToolCall) protocol.Message {
	return s.dispatcher.Dispatch(ctx, call)
}

// Describe returns the registered tool definitions in registration
// order.
func (s *Server) Describe() []protocol.ToolDefinition {
	return s.registry.List()
}
