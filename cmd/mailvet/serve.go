package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/mailvet/internal/api"
	"github.com/Veraticus/mailvet/internal/certs"
	"github.com/Veraticus/mailvet/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve classification and column detection over HTTP",
		Long: `Start an HTTP server exposing:

  GET  /healthz
  POST /v1/classify        {"address": "..."}
  POST /v1/classify/batch  {"addresses": [...], "batchSize": 10}
  POST /v1/detect          raw CSV body, optional ?delimiter=`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed certificate")
	_ = viper.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag(config.KeyServerTLS, cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	server := api.NewServer(api.Options{
		Timeout:     cfg.ServerTimeout,
		MaxFileSize: cfg.MaxFileSize,
		BatchSize:   cfg.BatchSize,
		SampleSize:  cfg.SampleSize,
	})

	errCh := make(chan error, 1)
	go func() {
		if cfg.ServerTLS {
			errCh <- server.StartTLS(cfg.ServerAddr, certs.NewStore(cfg.CertDir))
			return
		}
		errCh <- server.Start(cfg.ServerAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
