// Package server exposes the table service over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/gameid"
	"github.com/lox/blackjack/internal/store"
	"github.com/lox/blackjack/internal/table"
	"golang.org/x/sync/errgroup"
)

// SessionHeader carries the session ID on HTTP requests and responses
const SessionHeader = "X-Session-ID"

// Config controls the listener and the idle reaper
type Config struct {
	Address string
	// IdleTimeout forgets sessions untouched for this long; zero disables it.
	IdleTimeout time.Duration
	Clock       quartz.Clock
}

// Server serves the action API
type Server struct {
	addr        string
	idleTimeout time.Duration
	clock       quartz.Clock
	service     *table.Service
	ids         *gameid.Generator
	upgrader    websocket.Upgrader
	logger      *log.Logger

	mu          sync.RWMutex
	connections map[*Connection]struct{}
	baseCtx     context.Context
}

// New creates a server for the given service
func New(cfg Config, service *table.Service, logger *log.Logger) *Server {
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Server{
		addr:        cfg.Address,
		idleTimeout: cfg.IdleTimeout,
		clock:       clock,
		service:     service,
		ids:         gameid.NewGenerator(clock, nil),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]struct{}),
		baseCtx:     context.Background(),
	}
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/tables", s.handleTables)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/action", s.handleAction)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		s.logger.Info("Listening", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down")
		s.closeConnections()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if s.idleTimeout > 0 {
		g.Go(func() error {
			s.reapLoop(ctx)
			return nil
		})
	}

	return g.Wait()
}

// reapLoop drops idle sessions every half idle period.
func (s *Server) reapLoop(ctx context.Context) {
	ticker := s.clock.NewTicker(s.idleTimeout/2, "server", "reaper")
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.service.ReapIdle(s.idleTimeout); n > 0 {
				s.logger.Info("Reaped idle sessions", "count", n, "active", s.service.Sessions())
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

// Connections returns the number of open WebSocket connections
func (s *Server) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) handleTables(w http.ResponseWriter, _ *http.Request) {
	var infos []TableInfo
	for _, name := range s.service.Tables() {
		rules, _ := s.service.Rules(name)
		infos = append(infos, TableInfo{Name: name, Default: name == s.service.DefaultTable(), Rules: rules})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	session := r.Header.Get(SessionHeader)
	if session == "" {
		session = r.URL.Query().Get("session")
	}
	if !store.ValidSession(session) {
		writeJSON(w, http.StatusBadRequest, ErrorData{Code: "invalid_request", Message: "a valid session is required"})
		return
	}
	s.respond(w, session, s.service.Handle(r.Context(), session, table.Request{Action: table.ActionGetState}))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageSize))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorData{Code: "invalid_request", Message: "failed to parse request body"})
		return
	}

	session := req.Session
	if session == "" {
		session = r.Header.Get(SessionHeader)
	}
	if session == "" {
		session = s.ids.Generate()
		s.logger.Debug("Assigned new session", "session", session)
	}
	if !store.ValidSession(session) {
		writeJSON(w, http.StatusBadRequest, ErrorData{Code: "invalid_request", Message: "invalid session id"})
		return
	}
	s.respond(w, session, s.service.Handle(r.Context(), session, req.Request))
}

func (s *Server) respond(w http.ResponseWriter, session string, resp table.Response) {
	w.Header().Set(SessionHeader, session)
	writeJSON(w, statusFor(resp), ActionResponse{Session: session, Response: resp})
}

// statusFor maps a failed response to an HTTP status: caller mistakes are
// 4xx, broken invariants and storage failures 5xx.
func statusFor(resp table.Response) int {
	if resp.Success {
		return http.StatusOK
	}
	switch resp.Code {
	case "invalid_state", "ineligible_action":
		return http.StatusConflict
	case "invalid_bet", "config_invalid":
		return http.StatusBadRequest
	case "insufficient_funds":
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if session == "" {
		session = s.ids.Generate()
	}
	if !store.ValidSession(session) {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, http.Header{SessionHeader: []string{session}})
	if err != nil {
		s.logger.Warn("Failed to upgrade connection", "error", err)
		return
	}

	s.mu.Lock()
	conn := newConnection(s.baseCtx, ws, session, s)
	s.connections[conn] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "session", session, "total", total)

	welcome, err := NewMessage(MessageTypeWelcome, WelcomeData{
		Session: session,
		Tables:  s.service.Tables(),
		Actions: table.ValidActions(),
	}, s.clock.Now())
	if err == nil {
		_ = conn.SendMessage(welcome)
	}
	conn.Start()

	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "session", session, "total", total)
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
