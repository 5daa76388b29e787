// Package gateway serves MCP servers over WebSocket. It is a thin
// transport adapter: it decodes incoming tool_call messages, hands them
// to the mounted server's Handle entry point and writes the response
// back, pushing the tool list on connect and periodic heartbeats while
// the connection lives.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/karthik-ravi-1537/mcp-demo/internal/metrics"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/mcpserver"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
)

// Config holds gateway configuration.
type Config struct {
	Host              string
	Port              int
	HeartbeatInterval time.Duration
	Logger            zerolog.Logger
	Metrics           *metrics.Metrics
}

// Server is the WebSocket gateway. Multiple MCP servers are multiplexed
// by path: a server named "calculator" is reachable at /ws/calculator.
type Server struct {
	host              string
	port              int
	heartbeatInterval time.Duration
	server            *http.Server
	upgrader          websocket.Upgrader
	servers           map[string]*mcpserver.Server
	clients           map[string]*client
	clientsMu         sync.RWMutex
	serversMu         sync.RWMutex
	logger            zerolog.Logger
	metrics           *metrics.Metrics
	isShuttingDown    bool
	shutdownMu        sync.RWMutex
	inFlightReqs      sync.WaitGroup
	heartbeatCancel   context.CancelFunc
	heartbeatWG       sync.WaitGroup
}

type client struct {
	id         string
	serverName string
	conn       *websocket.Conn
	writeMu    sync.Mutex
}

func (c *client) send(m protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(m)
}

// NewServer creates a gateway.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}

	return &Server{
		host:              cfg.Host,
		port:              cfg.Port,
		heartbeatInterval: cfg.HeartbeatInterval,
		servers:           make(map[string]*mcpserver.Server),
		clients:           make(map[string]*client),
		logger:            cfg.Logger,
		metrics:           cfg.Metrics,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}, nil
}

// Mount exposes an MCP server on the gateway. Mounting two servers with
// the same name fails.
func (s *Server) Mount(srv *mcpserver.Server) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	s.serversMu.Lock()
	defer s.serversMu.Unlock()

	if _, exists := s.servers[srv.Name()]; exists {
		return fmt.Errorf("server already mounted: %s", srv.Name())
	}
	s.servers[srv.Name()] = srv

	s.logger.Info().Str("server", srv.Name()).Int("tools", len(srv.Describe())).Msg("Server mounted")
	return nil
}

// Handler returns the gateway's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// Start starts the gateway listener and heartbeat emitter.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.host, s.port),
		Handler: s.Handler(),
	}

	s.logger.Info().Str("host", s.host).Int("port", s.port).Msg("Starting gateway")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Gateway server error")
		}
	}()

	s.startHeartbeat()
	return nil
}

// Stop gracefully stops the gateway, draining in-flight calls.
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down gateway")
	s.stopHeartbeat()

	s.broadcast(protocol.Shutdown{
		MessageType: protocol.MessageTypeShutdown,
		Reason:      "server is shutting down",
		Timestamp:   time.Now().UTC(),
	})

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	}

	s.clientsMu.Lock()
	for _, c := range s.clients {
		c.conn.Close()
	}
	s.clients = make(map[string]*client)
	s.clientsMu.Unlock()

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown gateway: %w", err)
		}
	}

	s.logger.Info().Msg("Gateway stopped")
	return nil
}

func (s *Server) startHeartbeat() {
	ctx, cancel := context.WithCancel(context.Background())
	s.heartbeatCancel = cancel
	s.heartbeatWG.Add(1)

	go func() {
		defer s.heartbeatWG.Done()

		ticker := time.NewTicker(s.heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.emitHeartbeats()
			}
		}
	}()
}

func (s *Server) stopHeartbeat() {
	if s.heartbeatCancel != nil {
		s.heartbeatCancel()
		s.heartbeatCancel = nil
	}
	s.heartbeatWG.Wait()
}

func (s *Server) emitHeartbeats() {
	s.clientsMu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.RUnlock()

	for _, c := range clients {
		if err := c.send(protocol.NewHeartbeat(c.serverName)); err != nil {
			s.logger.Debug().Err(err).Str("clientId", c.id).Msg("Heartbeat write failed")
		}
	}
}

func (s *Server) broadcast(m protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if err := c.send(m); err != nil {
			s.logger.Debug().Err(err).Str("clientId", c.id).Msg("Broadcast write failed")
		}
	}
}

func (s *Server) lookupServer(name string) (*mcpserver.Server, bool) {
	s.serversMu.RLock()
	defer s.serversMu.RUnlock()
	srv, ok := s.servers[name]
	return srv, ok
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	if s.isShuttingDown {
		s.shutdownMu.RUnlock()
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}
	s.shutdownMu.RUnlock()

	serverName := strings.TrimPrefix(r.URL.Path, "/ws/")
	srv, ok := s.lookupServer(serverName)
	if !ok {
		http.Error(w, "Unknown server", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	clientID, _ := gonanoid.New()
	c := &client{
		id:         clientID,
		serverName: serverName,
		conn:       conn,
	}

	s.clientsMu.Lock()
	s.clients[clientID] = c
	s.clientsMu.Unlock()

	if s.metrics != nil {
		s.metrics.ConnectionsTotal.Inc()
		s.metrics.ConnectionsActive.Inc()
	}

	s.logger.Info().
		Str("clientId", clientID).
		Str("server", serverName).
		Str("ip", r.RemoteAddr).
		Msg("Client connected")

	// Advertise the tool list on connect.
	if err := c.send(protocol.NewToolList(srv.Describe())); err != nil {
		s.logger.Error().Err(err).Str("clientId", clientID).Msg("Failed to send tool list")
		s.dropClient(c)
		return
	}

	go s.handleClient(c, srv)
}

func (s *Server) dropClient(c *client) {
	c.conn.Close()

	s.clientsMu.Lock()
	_, present := s.clients[c.id]
	delete(s.clients, c.id)
	s.clientsMu.Unlock()

	if present && s.metrics != nil {
		s.metrics.ConnectionsActive.Dec()
	}
}

func (s *Server) handleClient(c *client, srv *mcpserver.Server) {
	defer func() {
		s.dropClient(c)
		s.logger.Info().Str("clientId", c.id).Msg("Client disconnected")
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Error().Err(err).Str("clientId", c.id).Msg("WebSocket error")
			}
			return
		}

		msg, err := protocol.DecodeMessage(data)
		if err != nil {
			s.logger.Warn().Err(err).Str("clientId", c.id).Msg("Invalid message")
			continue
		}
		if s.metrics != nil {
			s.metrics.MessagesReceivedTotal.WithLabelValues(msg.Type()).Inc()
		}

		call, ok := msg.(protocol.ToolCall)
		if !ok {
			s.logger.Warn().Str("clientId", c.id).Str("type", msg.Type()).Msg("Unsupported message type")
			continue
		}

		s.inFlightReqs.Add(1)
		resp := srv.Handle(context.Background(), call)
		s.inFlightReqs.Done()

		if err := c.send(resp); err != nil {
			s.logger.Error().Err(err).Str("clientId", c.id).Msg("Failed to write response")
			return
		}
	}
}
