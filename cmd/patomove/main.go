// Command patomove starts the pathogen genomics sample-tracking service.
//
// Usage:
//
//	patomove -config config.yaml
//
// Without a config file the service runs on :8080 with sqlite storage and
// filesystem blob storage; PATOMOVE_* environment variables override any
// setting (see internal/config).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nalarbp/patomove/internal/blob"
	"github.com/nalarbp/patomove/internal/config"
	"github.com/nalarbp/patomove/internal/core"
	"github.com/nalarbp/patomove/internal/httpapi"
	"github.com/nalarbp/patomove/internal/logger"
	"github.com/nalarbp/patomove/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "patomove: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(conf.Logging.Mode)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := core.DefaultRulesEngine()
	store, closeStore, err := core.OpenPersistentStore(engine, core.StorageOptions{
		Driver:      core.StorageDriver(conf.Storage.Driver),
		SQLitePath:  conf.Storage.SQLitePath,
		PostgresDSN: conf.Storage.PostgresDSN,
	})
	if err != nil {
		return fmt.Errorf("open persistent store: %w", err)
	}
	defer func() { _ = closeStore() }()

	blobStore, err := blob.Open(ctx, blob.Options{
		Driver:    blob.Driver(conf.Blob.Driver),
		Root:      conf.Blob.Root,
		Bucket:    conf.Blob.Bucket,
		Region:    conf.Blob.Region,
		Endpoint:  conf.Blob.Endpoint,
		PathStyle: conf.Blob.PathStyle,
	})
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	opts := []core.Option{
		core.WithBlobStore(blobStore),
		core.WithLogger(log),
	}
	if conf.Pipeline.BaseURL != "" {
		opts = append(opts, core.WithPipeline(pipeline.NewClient(conf.Pipeline.BaseURL, conf.Pipeline.CallbackURL)))
	}
	svc := core.NewService(store, opts...)

	server := httpapi.NewServer(svc, log)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.Service.Host, conf.Service.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening",
			"addr", httpServer.Addr,
			"storage_driver", conf.Storage.Driver,
			"blob_driver", conf.Blob.Driver,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
