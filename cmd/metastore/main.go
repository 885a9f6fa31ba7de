package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/aevon-lab/metastore/internal/core/config"
	"github.com/aevon-lab/metastore/internal/core/storage"
	"github.com/aevon-lab/metastore/internal/savedobjects"
	"github.com/aevon-lab/metastore/internal/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "metastore.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration and saved object types
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"storage_kind", cfg.Storage.Kind,
		"application_id", cfg.Storage.ApplicationID,
		"types_dir", cfg.Types.ConfigDir,
		"types", len(cfg.Registry.GetAllTypes()),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 2. Open the storage backend (runs relational migrations when enabled)
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage backend", "kind", cfg.Storage.Kind, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("Failed to close storage backend", "error", err)
		}
	}()

	// 3. Initialize the saved objects API
	savedObjectsSvc := savedobjects.NewService(backend, cfg.Server.MaxBodySizeMB)

	// 4. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), backend, cfg.Storage.Kind, cfg.Server.Mode)
	savedObjectsSvc.RegisterRoutes(srv.Engine)

	// 5. Serve until a signal cancels ctx
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Signal received, shutting down...")
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
