package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"github.com/gravitas-games/buildplanner/internal/catalog"
	"github.com/gravitas-games/buildplanner/internal/config"
	"github.com/gravitas-games/buildplanner/internal/planner"
	"github.com/gravitas-games/buildplanner/internal/store"
	"github.com/gravitas-games/buildplanner/pkg/geom"
	"github.com/gravitas-games/buildplanner/pkg/models"
)

// Server represents the planner server
type Server struct {
	config   *config.Config
	planner  planner.Config
	catalog  *catalog.Catalog
	store    store.Store
	classes  map[string]planner.Class
	upgrader websocket.Upgrader
	httpSrv  *http.Server

	jwtValidator *JWTValidator
	redis        *redis.Client

	// Connection tracking
	connections map[*Connection]bool
	connMu      sync.RWMutex

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// Option customizes a server.
type Option func(*Server)

// WithValidator replaces the JWT validator built from configuration.
func WithValidator(v *JWTValidator) Option {
	return func(s *Server) { s.jwtValidator = v }
}

// New creates a new server instance
func New(cfg *config.Config, cat *catalog.Catalog, st store.Store, opts ...Option) (*Server, error) {
	log.Println("Initializing server...")

	ctx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		config: cfg,
		planner: planner.Config{
			MainSize:  geom.Pt(cfg.Planner.MainWidth, cfg.Planner.MainHeight),
			CharmSize: geom.Pt(cfg.Planner.CharmWidth, cfg.Planner.CharmHeight),
		},
		catalog:     cat,
		store:       st,
		classes:     classesFromConfig(cfg.Classes),
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(srv)
	}

	if cfg.JWT.Enabled && srv.jwtValidator == nil {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Println("Connected to Redis")
		srv.redis = redisClient

		jwtValidator, err := NewJWTValidator(ctx, cfg.JWT, NewRedisBlacklist(redisClient, cfg.Redis.BlacklistPrefix))
		if err != nil {
			cancel()
			redisClient.Close()
			return nil, fmt.Errorf("failed to initialize JWT validator: %w", err)
		}
		srv.jwtValidator = jwtValidator
	}

	log.Printf("Server initialized with %d classes and %d catalog items", len(srv.classes), cat.Len())
	return srv, nil
}

func classesFromConfig(in []config.ClassConfig) map[string]planner.Class {
	out := make(map[string]planner.Class, len(in))
	for _, c := range in {
		out[c.Name] = planner.Class{
			Name:        c.Name,
			Description: c.Description,
			Image:       c.Image,
			Weapons:     append([]string(nil), c.Weapons...),
		}
	}
	return out
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	log.Printf("Starting WebSocket server on %s", addr)

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("WebSocket endpoint: ws://%s/ws", addr)
	log.Printf("Health endpoint: http://%s/health", addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	log.Println("Shutting down server...")

	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	s.connMu.Lock()
	for conn := range s.connections {
		conn.Close()
	}
	s.connMu.Unlock()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

func (s *Server) authenticate(r *http.Request) (*models.Player, error) {
	if s.jwtValidator == nil {
		return models.Anonymous(), nil
	}
	tokenString := extractTokenFromHeader(r)
	if tokenString == "" {
		return nil, fmt.Errorf("missing authentication token")
	}
	return s.jwtValidator.ValidateToken(r.Context(), tokenString)
}

// handleWebSocket handles WebSocket connection requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log.Printf("New WebSocket connection request from %s", r.RemoteAddr)

	player, err := s.authenticate(r)
	if err != nil {
		log.Printf("Rejected connection from %s: %v", r.RemoteAddr, err)
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	s.connMu.RLock()
	full := s.config.Server.MaxConnections > 0 && len(s.connections) >= s.config.Server.MaxConnections
	s.connMu.RUnlock()
	if full {
		http.Error(w, "Server full", http.StatusServiceUnavailable)
		return
	}

	log.Printf("Authenticated user: %s (%s) from %s", player.Username, player.ID, r.RemoteAddr)

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	player.ConnectedAt = time.Now()
	session := NewSession(player, s.planner, s.catalog, s.store, s.classes)
	conn := NewConnection(ws, s, player, session)

	s.connMu.Lock()
	s.connections[conn] = true
	s.connMu.Unlock()

	log.Printf("WebSocket connection established: %s (%s)", player.Username, r.RemoteAddr)

	conn.Handle()

	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()

	log.Printf("WebSocket connection closed: %s (%s)", player.Username, r.RemoteAddr)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.connMu.RLock()
	conns := len(s.connections)
	s.connMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"connections": conns,
		"items":       s.catalog.Len(),
		"runewords":   len(s.catalog.Runewords()),
	})
}
