package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proven-connections/connections-cli/internal/search"
	"github.com/proven-connections/connections-cli/internal/server"
	"github.com/proven-connections/connections-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the relationship search and map API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// A missing or unreadable table is fatal: there is nothing to
		// serve without it.
		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN())
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		rels, err := st.Load(ctx)
		if err != nil {
			st.Close()
			return eris.Wrap(err, "load relationships")
		}
		st.Close()

		engine := search.NewEngine(rels)
		cache := search.NewResultCache(
			cfg.Server.CacheEntries,
			time.Duration(cfg.Server.CacheTTLSecs)*time.Second,
		)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.New(engine, cache, cfg.Server, cfg.Map).Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(cmd.Context())
		}()

		stats := engine.Stats()
		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("relationships", stats.TotalRelationships),
			zap.Int("vendors", stats.TotalVendors),
			zap.Int("clients", stats.TotalClients),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
