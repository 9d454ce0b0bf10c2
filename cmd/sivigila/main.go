package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/sivigila/config"
	"github.com/spektr-org/sivigila/dataset"
)

// ============================================================================
// SIVIGILA CLI — Case dashboard server and exports
// ============================================================================

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:           "sivigila",
		Short:         "SIVIGILA case dashboard: filter, aggregate and export surveillance cases",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newSummaryCommand(), newImportCommand())

	if err := root.Execute(); err != nil {
		fatalf("%v", err)
	}
}

// loadDataset reads the configured source. A non-empty file overrides the configured driver.
func loadDataset(ctx context.Context, cfg config.Config, file string) (*dataset.Dataset, error) {
	if file != "" || cfg.DataDriver == config.DriverFile {
		if file == "" {
			file = cfg.DataPath
		}
		return dataset.LoadFile(file)
	}

	store, err := dataset.OpenStore(cfg.DataDriver, cfg.DataDSN)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("⚠️ Closing store: %v", err)
		}
	}()
	return store.Load(ctx)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
