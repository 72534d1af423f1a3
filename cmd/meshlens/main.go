// Package main is the entry point for the MeshLens viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Faultbox/meshlens/internal/config"
	"github.com/Faultbox/meshlens/internal/logger"
	"github.com/Faultbox/meshlens/internal/pipeline"
	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/internal/store"
	"github.com/Faultbox/meshlens/internal/telemetry"
	"github.com/Faultbox/meshlens/internal/viewer"
	"github.com/Faultbox/meshlens/internal/watch"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== MeshLens ===")
	if cfg.Source != "" {
		logger.Info("config loaded", zap.String("source", cfg.Source))
	}
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	metrics := telemetry.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		go func() {
			if err := telemetry.Serve(ctx, cfg.Metrics.Addr, prometheus.DefaultGatherer); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	p, err := pipeline.New(st, scene.New(), metrics, pipeline.Options{
		Subdivide: cfg.Analysis.SubdivideOptions(),
		Selector:  cfg.Analysis.SelectorOptions(),
	})
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	v, err := viewer.New(cfg, p, metrics)
	if err != nil {
		return err
	}
	defer v.Close()

	files := config.Args()
	if cfg.Viewer.Watch && len(files) > 0 {
		if err := startWatcher(ctx, files, v); err != nil {
			logger.Warn("file watching disabled", zap.Error(err))
		}
	}

	v.Open(ctx, files)
	return v.Run(ctx)
}

// openStore opens the bolt store at the configured path, or an in-memory
// store when no path is set.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	var st store.Store
	if cfg.Path == "" {
		logger.Info("using in-memory scene store")
		st = store.NewMemory()
	} else {
		b, err := store.OpenBolt(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening scene store: %w", err)
		}
		logger.Info("opened scene store", zap.String("path", b.Path()))
		st = b
	}

	if cfg.ClearOnStart {
		if err := st.Clear(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("clearing scene store: %w", err)
		}
	}
	return st, nil
}

// startWatcher reloads the scene whenever one of files changes on disk.
func startWatcher(ctx context.Context, files []string, v *viewer.Viewer) error {
	w, err := watch.New(files, watch.DefaultDebounce)
	if err != nil {
		return err
	}

	changed := make(chan string)
	go w.Run(ctx, changed)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case path := <-changed:
				logger.Info("reloading scene", zap.String("changed", path))
				v.Reload(ctx, path)
			}
		}
	}()
	return nil
}
