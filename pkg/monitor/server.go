// Package monitor mirrors harness console output to WebSocket
// clients as it is written.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"digital.vasic.harness/pkg/logging"
)

const (
	// ConsolePath is the WebSocket endpoint streaming console
	// output.
	ConsolePath = "/console"
	// HealthPath answers "ok" while the server is running.
	HealthPath = "/health"

	writeWait  = 5 * time.Second
	sendBuffer = 64
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server broadcasts everything written to it as WebSocket text
// frames. One Write call becomes one frame. Clients that fall
// behind lose frames rather than block the writer.
type Server struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	closed   bool
	upgrader websocket.Upgrader
	server   *http.Server
	listener net.Listener
	stopped  chan struct{}
	logger   logging.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer creates a Server with no clients.
func NewServer(opts ...Option) *Server {
	s := &Server{
		clients: make(map[*client]struct{}),
		logger:  logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes served by the monitor.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(ConsolePath, s)
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Listen binds addr and serves the monitor routes in the
// background until ctx is done or Stop is called. Either way
// no goroutine outlives the server.
func (s *Server) Listen(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("monitor listen %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: writeWait,
	}
	srv := s.server
	stopped := make(chan struct{})
	s.stopped = stopped
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop(context.Background())
		case <-stopped:
		}
	}()

	go func() {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("monitor server stopped",
				logging.ErrorField(err))
		}
	}()

	s.logger.Info("monitor listening",
		logging.StringField("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop disconnects every client and shuts down the HTTP server.
// It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	srv := s.server
	s.server = nil
	if s.stopped != nil {
		close(s.stopped)
		s.stopped = nil
	}
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Write broadcasts p to every client. It never fails.
func (s *Server) Write(p []byte) (int, error) {
	msg := make([]byte, len(p))
	copy(msg, p)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			s.logger.Debug("monitor client lagging, frame dropped",
				logging.StringField("remote", c.conn.RemoteAddr().String()))
		}
	}
	return len(p), nil
}

// ServeHTTP upgrades the request and streams frames to it until
// the client goes away or the server stops.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("monitor upgrade failed", logging.ErrorField(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if !s.register(c) {
		_ = conn.Close()
		return
	}
	go c.writeLoop()

	// Incoming frames are ignored; reading surfaces disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.unregister(c)
}

func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	return true
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}
