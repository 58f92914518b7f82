package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proven-connections/connections-cli/internal/store"
)

var (
	importFrom   string
	importDriver string
	importDSN    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the relationship CSV artifact into a database backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		from := importFrom
		if from == "" {
			from = cfg.Store.Path
		}

		driver := importDriver
		if driver == "" {
			driver = cfg.Store.Driver
		}
		if driver == "csv" {
			return eris.New("import target must be sqlite or postgres")
		}
		dsn := importDSN
		if dsn == "" {
			target := cfg.Store
			target.Driver = driver
			dsn = target.DSN()
		}

		rels, err := store.NewCSV(from).Load(ctx)
		if err != nil {
			return eris.Wrapf(err, "load artifact %s", from)
		}

		dst, err := store.Open(ctx, driver, dsn)
		if err != nil {
			return eris.Wrapf(err, "open %s store", driver)
		}
		defer dst.Close()

		if err := dst.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate")
		}
		if err := dst.Save(ctx, rels); err != nil {
			return eris.Wrap(err, "save")
		}

		zap.L().Info("import complete",
			zap.String("from", from),
			zap.String("driver", driver),
			zap.Int("relationships", len(rels)),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFrom, "from", "", "source CSV artifact (default from config)")
	importCmd.Flags().StringVar(&importDriver, "driver", "", "target driver: sqlite or postgres (default from config)")
	importCmd.Flags().StringVar(&importDSN, "dsn", "", "target path or connection string")
	rootCmd.AddCommand(importCmd)
}
