package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/amterp/wallet/internal/wallet"
)

// ServerOptions configures NewServer.
type ServerOptions struct {
	Addr string
	// WatchDir is the file backend's key directory. Empty disables watching
	// for changes made by other processes.
	WatchDir string
}

// Server wraps the HTTP server, the key watcher and the WebSocket hub.
type Server struct {
	httpServer  *http.Server
	router      chi.Router
	store       *wallet.Store
	watcher     *KeyWatcher
	wsHub       *WebSocketHub
	unsubscribe func()
	log         zerolog.Logger
}

// NewServer wires handler and store into a router.
func NewServer(handler *Handler, s *wallet.Store, opts ServerOptions, log zerolog.Logger) *Server {
	log = log.With().Str("component", "server").Logger()

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(log))
	r.Use(middleware.Recoverer)
	r.Use(Cors)

	handler.RegisterRoutes(r)

	wsHub := NewWebSocketHub(log, s.Snapshot)
	r.Get("/api/v1/ws", wsHub.ServeWS)

	var watcher *KeyWatcher
	if opts.WatchDir != "" {
		var err error
		watcher, err = NewKeyWatcher(opts.WatchDir, log)
		if err != nil {
			log.Warn().Err(err).Msg("file watching disabled")
		} else {
			watcher.Subscribe(NewReloader(s, log))
		}
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 45 * time.Second, // charges make two gateway calls
		},
		router:      r,
		store:       s,
		watcher:     watcher,
		wsHub:       wsHub,
		unsubscribe: s.Subscribe(wsHub.OnSnapshot),
		log:         log,
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Start listens on the configured address. Blocks until shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. Blocks until shutdown, and returns nil
// after a clean Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			s.log.Warn().Err(err).Msg("failed to start key watcher")
		}
	}

	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
	err := s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsubscribe()
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.log.Warn().Err(err).Msg("failed to stop key watcher")
		}
	}
	s.wsHub.CloseAll()
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
