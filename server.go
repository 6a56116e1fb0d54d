package main

import (
	"fmt"
	"net/http"

	"github.com/AtlasData/atlas-insight-go/analysis"
	"github.com/AtlasData/atlas-insight-go/analysis/query"
	"github.com/AtlasData/atlas-insight-go/pkg/catalog"
	"github.com/AtlasData/atlas-insight-go/pkg/config"
	"github.com/AtlasData/atlas-insight-go/pkg/filestore"
	"github.com/AtlasData/atlas-insight-go/pkg/scheduler"
	"github.com/AtlasData/atlas-insight-go/utils"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server wires the analysis engine, catalog and file store behind the
// HTTP API.
type Server struct {
	router    *mux.Router
	cfg       *config.Config
	analysis  analysis.Config
	engine    *query.Engine
	catalog   catalog.Store
	files     filestore.Store
	writable  filestore.WritableStore
	scheduler *scheduler.ProfileScheduler
	bus       *utils.EventBus
	logger    *utils.Logger
}

// NewServer creates a server from the loaded configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	logger := utils.GetLogger()

	analysisCfg, err := analysis.LoadConfig(cfg.AnalysisConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading analysis config: %w", err)
	}

	store, err := catalog.NewSQLiteStore(cfg.CatalogDBPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	fsStore, err := filestore.NewFileSystemStore(cfg.FileStorePath)
	if err != nil {
		return nil, fmt.Errorf("opening file store: %w", err)
	}

	// Reads and writes must share the cache so a PUT or DELETE drops the
	// cached copy instead of serving it until TTL expiry.
	var writable filestore.WritableStore = fsStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		writable = filestore.NewCachedStore(fsStore, redis.NewClient(opts), cfg.FileCacheTTL, logger)
		logger.Info("File cache enabled", utils.Component("server"))
	}
	var files filestore.Store = writable

	bus := utils.NewEventBus()
	bus.Subscribe("", utils.LoggingHandler(logger))

	engine := query.NewEngine(analysisCfg, store, files, bus, logger)

	s := &Server{
		router:    mux.NewRouter(),
		cfg:       cfg,
		analysis:  analysisCfg,
		engine:    engine,
		catalog:   store,
		files:     files,
		writable:  writable,
		scheduler: scheduler.NewProfileScheduler(engine, store, logger),
		bus:       bus,
		logger:    logger,
	}
	s.setupRoutes()
	return s, nil
}

// Start starts the profile scheduler and the HTTP server. It blocks
// until the listener fails.
func (s *Server) Start() error {
	if s.cfg.ProfileCron != "" {
		if err := s.scheduler.Start(s.cfg.ProfileCron); err != nil {
			s.logger.Error("Failed to start profile scheduler", err, utils.Component("server"))
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	s.logger.Info("Starting server",
		utils.String("port", s.cfg.Port),
		utils.Component("server"))
	return http.ListenAndServe(":"+s.cfg.Port, c.Handler(s.router))
}

// Shutdown stops background work and closes the catalog.
func (s *Server) Shutdown() {
	s.scheduler.Stop()
	if err := s.catalog.Close(); err != nil {
		s.logger.Error("Failed to close catalog", err, utils.Component("server"))
	}
}
