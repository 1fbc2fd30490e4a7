// Package inspect serves a development-time view into a running
// filament Runtime: live signal listings over HTTP and an engine event
// stream over WebSocket.
//
// The inspector reads the runtime's registry, so the runtime must be
// built with filament.WithRegistry. The event stream is fed by a Hub
// observer, which has to be installed when the runtime is constructed:
//
//	hub := inspect.NewHub(logger)
//	rt := filament.New(
//	    filament.WithRegistry(),
//	    filament.WithObserver(instrument.Multi(metrics, hub)),
//	)
//	srv := inspect.New(rt, inspect.WithHub(hub))
//	go srv.Run(":6060")
//
// Routes:
//   - GET /signals: JSON list of live signals, ordered by ID
//   - GET /signals/{id}: one signal with its codec-encoded value
//   - GET /events: WebSocket stream of engine events
//   - GET /healthz: liveness probe
//   - GET /metrics: Prometheus exposition
//
// The inspector carries no authentication. Bind it to localhost or put
// it behind the deployment's own access control.
package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/filament-go/filament/pkg/filament"
)

const shutdownTimeout = 10 * time.Second

// Config configures the inspector server.
type Config struct {
	// Logger is the structured logger (default: slog.Default()).
	Logger *slog.Logger

	// Hub feeds /events. Pass the Hub the runtime observes; the default
	// is a fresh Hub that no runtime feeds, so the stream stays silent.
	Hub *Hub

	// Metrics serves GET /metrics (default: promhttp.Handler()).
	Metrics http.Handler

	// CheckOrigin gates WebSocket upgrades. The default accepts every
	// origin; the inspector is meant for localhost.
	CheckOrigin func(*http.Request) bool
}

// Option configures the inspector server.
type Option func(*Config)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithHub sets the event hub feeding /events.
func WithHub(hub *Hub) Option {
	return func(c *Config) {
		if hub != nil {
			c.Hub = hub
		}
	}
}

// WithMetricsHandler sets the handler behind GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(c *Config) {
		if h != nil {
			c.Metrics = h
		}
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(check func(*http.Request) bool) Option {
	return func(c *Config) {
		if check != nil {
			c.CheckOrigin = check
		}
	}
}

// Server is the inspector HTTP/WebSocket server.
type Server struct {
	rt       *filament.Runtime
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   *chi.Mux

	httpServer *http.Server
}

// New creates an inspector over rt.
func New(rt *filament.Runtime, opts ...Option) *Server {
	config := Config{
		Logger:      slog.Default(),
		Metrics:     promhttp.Handler(),
		CheckOrigin: func(*http.Request) bool { return true },
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Hub == nil {
		config.Hub = NewHub(config.Logger)
	}

	s := &Server{
		rt:     rt,
		hub:    config.Hub,
		logger: config.Logger.With("component", "inspect"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
	}

	r := chi.NewRouter()
	r.Get("/signals", s.handleSignals)
	r.Get("/signals/{id}", s.handleSignal)
	r.Get("/events", s.handleEvents)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", config.Metrics)
	s.router = r

	return s
}

// Hub returns the event hub feeding /events.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the inspector as an http.Handler for mounting in an
// application's own router.
func (s *Server) Handler() http.Handler { return s.router }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves the inspector on addr until SIGINT/SIGTERM, then shuts
// down gracefully.
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector starting", "address", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-shutdown:
		s.logger.Info("inspector shutting down")
		return s.Shutdown(context.Background())
	}
}

// Shutdown drops event subscribers and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.hub.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("inspector shutdown error", "error", err)
			return err
		}
	}
	return nil
}

// signalDetail is the /signals/{id} response body.
type signalDetail struct {
	filament.SignalInfo
	Value      string `json:"value,omitempty"`
	ValueError string `json:"value_error,omitempty"`
}

// signalList is the /signals response body.
type signalList struct {
	Signals []filament.SignalInfo `json:"signals"`
	Count   int                   `json:"count"`
}

func (s *Server) handleSignals(w http.ResponseWriter, _ *http.Request) {
	infos := s.rt.Signals()
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	s.writeJSON(w, http.StatusOK, signalList{Signals: infos, Count: len(infos)})
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid signal id", http.StatusBadRequest)
		return
	}

	sig, ok := s.rt.SignalByID(id)
	if !ok {
		http.Error(w, "signal not found", http.StatusNotFound)
		return
	}

	detail := signalDetail{SignalInfo: sig.Info()}
	if value, err := sig.ValueString(); err != nil {
		detail.ValueError = err.Error()
	} else {
		detail.Value = value
	}
	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	id := s.hub.attach(conn)
	if id == "" {
		return
	}
	s.logger.Debug("event subscriber connected", "conn_id", id)

	// Read pump: subscribers send nothing, but reading surfaces the
	// close so the hub entry is reclaimed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.hub.detach(id)
				s.logger.Debug("event subscriber disconnected", "conn_id", id)
				return
			}
		}
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
