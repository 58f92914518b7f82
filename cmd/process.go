package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proven-connections/connections-cli/internal/clearbit"
	"github.com/proven-connections/connections-cli/internal/enrich"
	"github.com/proven-connections/connections-cli/internal/roster"
	"github.com/proven-connections/connections-cli/internal/store"
)

var (
	processSource string
	processOutput string
	processDryRun bool
	processLimit  int
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Build the enriched relationship table from the vendor roster",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		runID := uuid.New().String()
		start := time.Now()
		log := zap.L().With(zap.String("run_id", runID))

		source := processSource
		if source == "" {
			source = cfg.Roster.Source
		}

		rows, err := roster.Load(ctx, source)
		if err != nil {
			return eris.Wrapf(err, "load roster %s", source)
		}
		if processLimit > 0 && processLimit < len(rows) {
			rows = rows[:processLimit]
		}
		log.Info("roster loaded", zap.String("source", source), zap.Int("rows", len(rows)))

		if processDryRun {
			for _, row := range rows {
				fmt.Printf("%s (%s): %d clients\n",
					row.VendorName, row.VendorDomain, len(roster.ParseClientList(row.ClientsRaw)))
			}
			return nil
		}

		client := clearbit.New(clearbit.Options{
			Key:             cfg.Clearbit.Key,
			CompanyURL:      cfg.Clearbit.CompanyURL,
			AutocompleteURL: cfg.Clearbit.AutocompleteURL,
			MaxRetries:      cfg.Clearbit.MaxRetries,
			RetryDelay:      time.Duration(cfg.Clearbit.RetryDelaySecs) * time.Second,
			MinInterval:     time.Duration(cfg.Clearbit.MinIntervalMS) * time.Millisecond,
			Timeout:         time.Duration(cfg.Clearbit.TimeoutSecs) * time.Second,
		})
		cache := enrich.NewCache(client)

		domains := enrich.CollectDomains(rows)
		log.Info("prefetching company info",
			zap.Int("domains", len(domains)),
			zap.Int("concurrency", cfg.Enrich.Concurrency),
		)
		if err := cache.Prefetch(ctx, domains, cfg.Enrich.Concurrency); err != nil {
			return eris.Wrap(err, "prefetch")
		}

		rels := enrich.NewBuilder(cache, client).Build(ctx, rows)
		rels = enrich.Finalize(rels)

		storeCfg := cfg.Store
		if processOutput != "" {
			storeCfg.Driver = "csv"
			storeCfg.Path = processOutput
		}
		st, err := store.Open(ctx, storeCfg.Driver, storeCfg.DSN())
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}
		if err := st.Save(ctx, rels); err != nil {
			return eris.Wrap(err, "save relationships")
		}

		stats := enrich.Stats(rels)
		log.Info("processing complete",
			zap.String("driver", storeCfg.Driver),
			zap.String("destination", storeCfg.DSN()),
			zap.Int("relationships", stats.TotalRelationships),
			zap.Int("unique_vendors", stats.UniqueVendors),
			zap.Int("unique_clients", stats.UniqueClients),
			zap.Int("vendors_with_location", stats.VendorsWithLocation),
			zap.Int("clients_with_location", stats.ClientsWithLocation),
			zap.Duration("elapsed", time.Since(start)),
		)

		fmt.Printf("Processed %d relationships (%d vendors, %d clients) in %s\n",
			stats.TotalRelationships, stats.UniqueVendors, stats.UniqueClients,
			time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processSource, "source", "", "roster source path or URL (default from config)")
	processCmd.Flags().StringVar(&processOutput, "output", "", "write the table to this CSV path instead of the configured store")
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "parse the roster and print row summaries without enrichment")
	processCmd.Flags().IntVar(&processLimit, "limit", 0, "process at most this many roster rows")
	rootCmd.AddCommand(processCmd)
}
