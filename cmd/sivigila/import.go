package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/sivigila/config"
	"github.com/spektr-org/sivigila/dataset"
)

func newImportCommand() *cobra.Command {
	var (
		file    string
		driver  string
		dsn     string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a case export into the SQL store",
		Example: `  sivigila import --file casos.json --driver sqlite --dsn sivigila.db --replace
  DATA_DRIVER=postgres DATA_DSN="host=localhost user=sivigila dbname=sivigila" sivigila import --file casos.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if driver == "" {
				driver = cfg.DataDriver
			}
			if dsn == "" {
				dsn = cfg.DataDSN
			}
			if driver == config.DriverFile || dsn == "" {
				return fmt.Errorf("import needs a sqlite or postgres driver and a DSN")
			}

			ds, err := dataset.LoadFile(file)
			if err != nil {
				return err
			}
			store, err := dataset.OpenStore(driver, dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Import(cmd.Context(), ds.Cases(), replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cases into %s\n", n, driver)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON, NDJSON or CSV export (required)")
	cmd.Flags().StringVar(&driver, "driver", "", "sqlite or postgres (default DATA_DRIVER)")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Database DSN (default DATA_DSN)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Delete existing cases before importing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
