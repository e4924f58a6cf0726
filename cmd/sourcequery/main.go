// Command sourcequery runs the MCP query tool server.
//
// With no PORT configured it serves MCP over stdio. With PORT set it
// serves the streamable HTTP transport, plus /healthz and /metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sourcequery/sourcequery/config"
	"github.com/sourcequery/sourcequery/logging"
	"github.com/sourcequery/sourcequery/server"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "sourcequery: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(cfg.LogLevel)
	defer func() {
		_ = log.Sync()
	}()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{Config: cfg, Logger: log})
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(closeCtx); err != nil {
			log.Warn("store disconnect failed", zap.Error(err))
		}
	}()

	if cfg.Port == "" {
		log.Info("serving MCP over stdio")
		return srv.Run(ctx)
	}
	return serveHTTP(ctx, cfg.Port, srv, log)
}

func serveHTTP(ctx context.Context, port string, srv *server.Server, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/", srv.Handler())
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "%s ok\n", server.Name)
	})

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving MCP over HTTP", zap.String("addr", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
