// ABOUTME: Serving commands: builds the MCP handler from config and runs a transport
// ABOUTME: stdio is the default; http and nats run until SIGINT/SIGTERM

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/2389/msu-mcp/internal/auth"
	"github.com/2389/msu-mcp/internal/config"
	"github.com/2389/msu-mcp/internal/errcodes"
	"github.com/2389/msu-mcp/internal/mcp"
	"github.com/2389/msu-mcp/internal/msu"
)

// loadForServe loads and validates config and sets up the logger on stderr.
func loadForServe(stderr io.Writer) (*config.Config, string, *slog.Logger, error) {
	cfg, path, err := config.LoadDefault()
	if err != nil {
		return nil, path, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return nil, path, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, setupLogger(cfg.Logging, stderr), nil
}

// loadErrorCodes returns the table named by gateway.error_codes_file, or the
// built-in placeholder table when none is configured.
func loadErrorCodes(cfg *config.Config) (*errcodes.Table, error) {
	if cfg.Gateway.ErrorCodesFile == "" {
		return errcodes.Default(), nil
	}
	table, err := errcodes.LoadFile(cfg.Gateway.ErrorCodesFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.Gateway.ErrorCodesFile, err)
	}
	return table, nil
}

// buildHandler wires the gateway client, error-code table, and dispatcher.
func buildHandler(cfg *config.Config, logger *slog.Logger) (*mcp.Handler, error) {
	codes, err := loadErrorCodes(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Gateway.ErrorCodesFile == "" {
		logger.Warn("using built-in placeholder error codes; set gateway.error_codes_file for the official table")
	} else {
		logger.Info("loaded error codes", "file", cfg.Gateway.ErrorCodesFile, "count", codes.Len())
	}

	client, err := msu.NewClient(msu.ClientConfig{
		BaseURL: cfg.Gateway.URL,
		Timeout: cfg.Gateway.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MSU client: %w", err)
	}

	dispatcher, err := mcp.NewDispatcher(mcp.DispatcherConfig{
		Gateway:     client,
		Credentials: cfg.Credentials(),
		ErrorCodes:  codes,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}

	return mcp.NewHandler(dispatcher, version, logger), nil
}

func runServe(ctx context.Context) error {
	cfg, path, logger, err := loadForServe(os.Stderr)
	if err != nil {
		return err
	}

	logger.Info("starting msu-mcp",
		"transport", "stdio",
		"config", path,
		"api_url", cfg.Gateway.URL,
		"credentials", cfg.Credentials(),
	)

	handler, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}

	return mcp.NewStdioServer(handler, logger).Serve(ctx, os.Stdin, os.Stdout)
}

func runHTTP(ctx context.Context) error {
	cfg, path, logger, err := loadForServe(os.Stderr)
	if err != nil {
		return err
	}
	if err := cfg.ValidateHTTP(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	handler, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}

	var verifier auth.TokenVerifier
	if cfg.HTTP.JWTSecret != "" {
		v, err := auth.NewJWTVerifier([]byte(cfg.HTTP.JWTSecret))
		if err != nil {
			return fmt.Errorf("creating JWT verifier: %w", err)
		}
		verifier = v
	}

	transport, err := mcp.NewHTTPServer(mcp.HTTPConfig{
		Handler:       handler,
		Logger:        logger,
		TokenVerifier: verifier,
		RequireAuth:   cfg.HTTP.RequireAuth,
		SessionTTL:    cfg.HTTP.SessionTTL,
		MaxSessions:   cfg.HTTP.MaxSessions,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP transport: %w", err)
	}
	defer transport.Close()

	authMode := "off"
	switch {
	case cfg.HTTP.RequireAuth:
		authMode = "required"
	case verifier != nil:
		authMode = "optional"
	}
	printBanner(os.Stderr, path, [][2]string{
		{"HTTP", "http://" + cfg.HTTP.Addr + "/mcp"},
		{"Auth", authMode},
		{"MSU API", cfg.Gateway.URL},
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           transport.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting msu-mcp",
		"transport", "http",
		"addr", cfg.HTTP.Addr,
		"auth", authMode,
	)

	return serveHTTP(ctx, srv, cfg.HTTP.ShutdownTimeout, logger)
}

// serveHTTP runs srv until ctx is done, then shuts it down gracefully.
func serveHTTP(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP transport")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runNATS(ctx context.Context) error {
	cfg, path, logger, err := loadForServe(os.Stderr)
	if err != nil {
		return err
	}
	if err := cfg.ValidateNATS(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	handler, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}

	transport, err := mcp.NewNATSServer(mcp.NATSConfig{
		Handler:        handler,
		Logger:         logger,
		Subject:        cfg.NATS.Subject,
		Queue:          cfg.NATS.Queue,
		RequestTimeout: cfg.NATS.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("creating NATS transport: %w", err)
	}

	printBanner(os.Stderr, path, [][2]string{
		{"NATS", cfg.NATS.URL},
		{"Subject", transport.Subject()},
		{"MSU API", cfg.Gateway.URL},
	})

	nc, err := mcp.ConnectNATS(cfg.NATS.URL, cfg.NATS.Name, logger)
	if err != nil {
		return err
	}
	defer nc.Close()

	return transport.Serve(ctx, nc)
}
