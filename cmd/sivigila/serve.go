package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spektr-org/sivigila/config"
	"github.com/spektr-org/sivigila/dataset"
	"github.com/spektr-org/sivigila/geo"
	"github.com/spektr-org/sivigila/server"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ds, err := loadDataset(ctx, cfg, "")
	if err != nil {
		return err
	}
	holder := dataset.NewHolder(ds)

	if cfg.WatchData {
		if err := dataset.NewWatcher(cfg.DataPath, holder).Start(ctx); err != nil {
			return err
		}
	}

	var boundaries *geo.Boundaries
	if cfg.GeoJSONPath != "" {
		boundaries, err = geo.LoadBoundariesFile(cfg.GeoJSONPath, cfg.GeoCodeProperty)
		if err != nil {
			return err
		}
		boundaries.Width = cfg.GeoCodeWidth
		log.Printf("🗺️ Loaded %d boundaries from %s", boundaries.Len(), cfg.GeoJSONPath)
	}

	api := server.New(holder, boundaries, cfg.EngineOptions()...)
	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           api.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxTimeout)
	}()

	log.Printf("server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
