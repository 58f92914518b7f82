// Package server exposes the relationship table over HTTP. All queries
// run against the in-memory engine; serving never calls enrichment
// APIs.
package server

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/proven-connections/connections-cli/internal/config"
	"github.com/proven-connections/connections-cli/internal/search"
)

// Server wires the query engine, the response cache, and static
// front-end files into one HTTP handler.
type Server struct {
	engine *search.Engine
	cache  *search.ResultCache
	cfg    config.ServerConfig
	mapCfg config.MapConfig
}

// New creates a Server. The cache may be nil to disable response
// caching.
func New(engine *search.Engine, cache *search.ResultCache, cfg config.ServerConfig, mapCfg config.MapConfig) *Server {
	return &Server{engine: engine, cache: cache, cfg: cfg, mapCfg: mapCfg}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search/companies", s.handleSearchCompanies)
		r.Get("/search/vendors", s.handleSearchVendors)
		r.Get("/search/clients", s.handleSearchClients)
		r.Get("/vendor/{name}/clients", s.handleVendorClients)
		r.Get("/client/{name}/vendors", s.handleClientVendors)
		r.Get("/stats", s.handleStats)
		r.Get("/config/map", s.handleMapConfig)
	})

	if s.cfg.StaticDir != "" {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, filepath.Join(s.cfg.StaticDir, "index.html"))
		})
		fileServer := http.FileServer(http.Dir(s.cfg.StaticDir))
		r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.AllowedOrigins
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
