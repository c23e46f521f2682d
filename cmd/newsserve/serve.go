package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/newsinsight/newsserve/pkg/server"
)

var (
	serveAddr    string
	servePreload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API: news listings, browsing analytics, category and
topic autocomplete, the analysis proxy, /health and /metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().BoolVar(&servePreload, "preload", false, "Build both autocomplete indexes before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	minDate, maxDate, err := cfg.Server.DateBounds()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := newSuggestService(store)
	srv, err := server.NewServer(server.Config{
		Addr:          cfg.Server.Addr,
		ReadTimeout:   cfg.Server.ReadTimeout.Duration,
		WriteTimeout:  cfg.Server.WriteTimeout.Duration,
		MinDate:       minDate,
		MaxDate:       maxDate,
		AllowedOrigin: cfg.Server.AllowedOrigin,
		MaxPrefixLen:  cfg.Server.MaxPrefixLen,
	}, store, svc, newProxyClient())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// preload failures are logged; the first request retries the build
	if servePreload || cfg.Matcher.Preload {
		if err := svc.Warm(ctx); err != nil {
			log.Warnf("Autocomplete preload failed: %v", err)
		}
	}

	showStartupInfo(cfg.Server.Addr)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(addr string) {
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("store: ( %s )", cfg.Store.Path)
	log.Infof("listening on http://%s", addr)
	log.Info("Press Ctrl+C to exit")
}
