// Package bridge exposes the command dispatcher over a websocket so that a
// chat platform adapter can drive the bot from another process.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/wagerbot/internal/auth"
	"github.com/lox/wagerbot/internal/command"
	"github.com/lox/wagerbot/internal/metrics"
	"github.com/lox/wagerbot/internal/present"
)

// Handler runs one chat message.
type Handler interface {
	Handle(ctx context.Context, user, text string) command.Reply
}

// Options configures a Server. Handler is required.
type Options struct {
	Handler  Handler
	Text     *present.Text
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Clock    quartz.Clock
	Logger   *log.Logger

	// Validator checks adapter tokens; nil accepts every connection.
	Validator auth.Validator
}

type route struct {
	conn    *Connection
	channel string
}

// Server accepts websocket clients and routes session updates back to the
// client whose command started or joined the session.
type Server struct {
	upgrader  websocket.Upgrader
	handler   Handler
	validator auth.Validator
	text      *present.Text
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	clock     quartz.Clock
	logger    *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection

	mu     sync.Mutex
	routes map[string][]route
	// settled remembers recent final updates so a late route is not kept.
	settled      map[string]bool
	settledOrder []string
}

const settledLimit = 256

func NewServer(opts Options) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		handler:     opts.Handler,
		validator:   opts.Validator,
		text:        opts.Text,
		metrics:     opts.Metrics,
		gatherer:    opts.Gatherer,
		clock:       opts.Clock,
		logger:      opts.Logger.WithPrefix("bridge"),
		ctx:         ctx,
		cancel:      cancel,
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		routes:      make(map[string][]route),
		settled:     make(map[string]bool),
	}
	if s.text == nil {
		s.text = present.NewPlainText()
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	go s.run()
	return s
}

// Handler returns the HTTP routes: /ws, /health and, when a gatherer is set,
// /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.Stop()
		return err
	case <-ctx.Done():
	}

	s.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop disconnects every client.
func (s *Server) Stop() {
	s.cancel()
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.metrics.ClientConnected()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if s.connections[conn] {
				delete(s.connections, conn)
				s.metrics.ClientDisconnected()
				for id, rs := range s.routes {
					if rs = dropConn(rs, conn); len(rs) == 0 {
						delete(s.routes, id)
					} else {
						s.routes[id] = rs
					}
				}
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

func dropConn(rs []route, conn *Connection) []route {
	out := rs[:0]
	for _, r := range rs {
		if r.conn != conn {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	adapter := "anonymous"
	if s.validator != nil {
		id, err := s.validator.Validate(r.Context(), requestToken(r))
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			s.logger.Warn("Rejected adapter with invalid token", "remote", r.RemoteAddr)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		case err != nil:
			s.logger.Error("Auth service unavailable", "error", err)
			http.Error(w, "auth unavailable", http.StatusServiceUnavailable)
			return
		case id != nil:
			adapter = id.Name
		}
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(ws, s)
	conn.adapter = adapter
	conn.logger = conn.logger.With("adapter", adapter)
	select {
	case s.register <- conn:
	case <-s.ctx.Done():
		_ = ws.Close()
		return
	}
	conn.start()

	go func() {
		<-conn.ctx.Done()
		select {
		case s.unregister <- conn:
		case <-s.ctx.Done():
		}
	}()
}

// requestToken reads a bearer token from the Authorization header, falling
// back to the token query parameter.
func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// route sends future updates for a session to conn.
func (s *Server) route(sessionID string, conn *Connection, channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled[sessionID] {
		return
	}
	for _, r := range s.routes[sessionID] {
		if r.conn == conn && r.channel == channel {
			return
		}
	}
	s.routes[sessionID] = append(s.routes[sessionID], route{conn: conn, channel: channel})
}

// Present implements present.Presenter. Updates for sessions with no known
// route go to every client.
func (s *Server) Present(u present.Update) {
	data := UpdateData{
		SessionID: u.SessionID,
		User:      u.Snapshot.Owner,
		Snapshot:  u.Snapshot,
		Text:      s.text.Render(u),
		Final:     u.Final,
	}

	s.mu.Lock()
	targets := append([]route(nil), s.routes[u.SessionID]...)
	if u.Final {
		delete(s.routes, u.SessionID)
		s.settled[u.SessionID] = true
		s.settledOrder = append(s.settledOrder, u.SessionID)
		if len(s.settledOrder) > settledLimit {
			delete(s.settled, s.settledOrder[0])
			s.settledOrder = s.settledOrder[1:]
		}
	}
	if len(targets) == 0 {
		for conn := range s.connections {
			targets = append(targets, route{conn: conn})
		}
	}
	s.mu.Unlock()

	now := s.clock.Now()
	for _, r := range targets {
		data.Channel = r.channel
		msg, err := NewMessage(TypeUpdate, data, now)
		if err != nil {
			s.logger.Error("Failed to create update message", "error", err)
			return
		}
		if err := r.conn.Send(msg); err != nil {
			s.logger.Debug("Failed to send update", "session", u.SessionID, "error", err)
		}
	}
}
