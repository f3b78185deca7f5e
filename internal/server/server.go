// Package server hosts the tool surface over HTTP. It owns the lifecycle
// of every component: the page store, both indices, the hybrid searcher,
// the resolvers, and the ingestor, opened at start and released at
// shutdown. Routes come from the endpoint registry so each operation is
// defined once for both HTTP and the CLI.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/regcore/internal/annotations"
	"github.com/jackzampolin/regcore/internal/api"
	"github.com/jackzampolin/regcore/internal/config"
	"github.com/jackzampolin/regcore/internal/embedclient"
	"github.com/jackzampolin/regcore/internal/endpoints"
	"github.com/jackzampolin/regcore/internal/home"
	"github.com/jackzampolin/regcore/internal/hybrid"
	"github.com/jackzampolin/regcore/internal/ingest"
	"github.com/jackzampolin/regcore/internal/lexindex"
	"github.com/jackzampolin/regcore/internal/pagestore"
	"github.com/jackzampolin/regcore/internal/reference"
	"github.com/jackzampolin/regcore/internal/toolsurface"
	"github.com/jackzampolin/regcore/internal/vecindex"
)

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the port to listen on (default: 8080).
	Port string
	// ConfigManager provides the retrieval options with hot-reload support.
	ConfigManager *config.Manager
	// Logger is the structured logger to use.
	Logger *slog.Logger
	// Home is the regcore home directory.
	Home *home.Dir
	// EmbedConfig configures the reference embedder. An empty APIKey
	// leaves the vector side dark: ingest and search degrade to
	// lexical-only until one is supplied.
	EmbedConfig embedclient.Config
}

// Server is the regcore HTTP server.
type Server struct {
	httpServer       *http.Server
	mux              *http.ServeMux
	cfgMgr           *config.Manager
	logger           *slog.Logger
	home             *home.Dir
	embedCfg         embedclient.Config
	endpointRegistry *api.Registry

	store    *pagestore.Store
	lex      *lexindex.Index
	vec      *vecindex.Index
	searcher *hybrid.Searcher
	ingestor *ingest.Ingestor
	surface  *toolsurface.Surface

	mu      sync.RWMutex
	running bool
	ready   bool
}

// New creates a new Server with the given configuration. Components are
// opened in Start, not here, so a construction failure never leaves index
// files locked.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("server requires a home directory")
	}
	if cfg.ConfigManager == nil {
		return nil, errors.New("server requires a config manager")
	}

	s := &Server{
		cfgMgr:   cfg.ConfigManager,
		logger:   cfg.Logger,
		home:     cfg.Home,
		embedCfg: cfg.EmbedConfig,
	}

	mux := http.NewServeMux()
	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	s.mux = mux
	return s, nil
}

// Start opens every component, registers routes, and serves until the
// context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.home.EnsureExists(); err != nil {
		s.setNotRunning()
		return err
	}

	cfg := s.cfgMgr.Get()

	lex, err := lexindex.Open(s.home.LexicalIndexDir())
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("opening lexical index: %w", err)
	}
	s.lex = lex

	dim := cfg.VectorDimension
	if s.embedCfg.Dimension > 0 {
		dim = s.embedCfg.Dimension
	}
	vec, err := vecindex.Open(s.home.VectorIndexDir(), dim)
	if err != nil {
		_ = s.lex.Close()
		s.setNotRunning()
		return fmt.Errorf("opening vector index: %w", err)
	}
	s.vec = vec

	var embedder hybrid.Embedder
	if s.embedCfg.APIKey != "" {
		s.embedCfg.Dimension = dim
		embedder = embedclient.New(s.embedCfg)
		s.logger.Info("embedder configured", "model", s.embedCfg.Model, "dimension", dim)
	} else {
		s.logger.Warn("no embedder API key, running lexical-only")
	}

	s.store = pagestore.New(s.home)
	s.searcher = hybrid.New(s.lex, s.vec, embedder, hybrid.Weights{
		Lexical: cfg.FTSWeight,
		Vector:  cfg.VectorWeight,
		K:       cfg.RRFK,
	})
	s.cfgMgr.OnChange(func(c *config.Config) {
		s.searcher.Weights = hybrid.Weights{Lexical: c.FTSWeight, Vector: c.VectorWeight, K: c.RRFK}
		s.logger.Info("fusion weights reloaded", "fts_weight", c.FTSWeight, "vector_weight", c.VectorWeight, "rrf_k", c.RRFK)
	})

	ann := annotations.New(s.store)
	ref := reference.New(ann)
	s.surface = toolsurface.New(s.store, s.searcher, ann, ref)

	s.ingestor = ingest.New(s.store, s.lex, s.vec, embedder, ingest.Config{
		VectorContentLimit:     cfg.VectorContentLimit,
		TableRegistryAutobuild: cfg.TableRegistryAutobuild,
	}, s.logger)

	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{Surface: s.surface, Ingestor: s.ingestor}) {
		s.endpointRegistry.Register(ep)
	}
	s.endpointRegistry.RegisterRoutes(s.mux, s.requireInit)

	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
		return s.shutdown()
	case err := <-errCh:
		_ = s.shutdown()
		return err
	}
}

func (s *Server) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var firstErr error
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		firstErr = err
	}
	if s.lex != nil {
		if err := s.lex.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.setNotRunning()
	return firstErr
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.ready = false
	s.mu.Unlock()
}

// requireInit rejects requests that arrive before the components have
// opened (or after shutdown began).
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		ready := s.ready
		s.mu.RUnlock()
		if !ready {
			http.Error(w, `{"error":"server not ready"}`, http.StatusServiceUnavailable)
			return
		}
		next(w, r)
	}
}

// withLogging tags each request with a correlation id and logs method,
// path, and duration. The id is echoed in X-Request-ID so a caller's logs
// line up with the server's.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
