package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/proven-connections/connections-cli/internal/enrich"
	"github.com/proven-connections/connections-cli/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics for the persisted relationship table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN())
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		rels, err := st.Load(ctx)
		if err != nil {
			return eris.Wrap(err, "load relationships")
		}

		stats := enrich.Stats(rels)
		fmt.Printf("Relationships:          %d\n", stats.TotalRelationships)
		fmt.Printf("Unique vendors:         %d\n", stats.UniqueVendors)
		fmt.Printf("Unique clients:         %d\n", stats.UniqueClients)
		fmt.Printf("Vendors with location:  %d\n", stats.VendorsWithLocation)
		fmt.Printf("Clients with location:  %d\n", stats.ClientsWithLocation)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
