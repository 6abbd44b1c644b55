package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/aretw0/skury"
	"github.com/aretw0/skury/internal/cli"
	"github.com/aretw0/skury/internal/presentation/tui"
	httpAdapter "github.com/aretw0/skury/pkg/adapters/http"
	"github.com/aretw0/skury/pkg/adapters/ws"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the coordinator HTTP server",
	Long: `Starts the coordinator and exposes it as a JSON API over HTTP.
Remote panels keep their keepalive port open on /v1/ports (websocket) and
metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		host, port, origins := e.cfg.HTTP.Host, e.cfg.HTTP.Port, e.cfg.HTTP.AllowedOrigins
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("allowed-origin") {
			origins, _ = cmd.Flags().GetStringSlice("allowed-origin")
		}

		coord, err := cli.NewCoordinator(e.cfg, e.store, e.logger)
		if err != nil {
			return err
		}
		defer coord.Close()

		handler, err := httpAdapter.NewHandler(coord,
			httpAdapter.WithLogger(e.logger),
			httpAdapter.WithMetrics(coord.Metrics().Handler()),
			httpAdapter.WithAllowedOrigins(origins...),
			httpAdapter.WithPorts(ws.Handler(coord.Acceptor().Accept,
				ws.WithLogger(e.logger),
				ws.WithAllowedOrigins(origins...),
			)),
		)
		if err != nil {
			return fmt.Errorf("error loading API description: %w", err)
		}

		srv := &http.Server{
			Addr:    net.JoinHostPort(host, strconv.Itoa(port)),
			Handler: handler,
		}

		if ok, _ := tui.IsTerminal(os.Stderr); ok {
			tui.PrintBanner(os.Stderr, skury.Version)
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			e.logger.Info("starting skury server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			e.logger.Info("start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				e.logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					e.logger.Error("error killing server", "err", err)
				}
			}
			e.logger.Info("skury server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides http.port)")
	serveCmd.Flags().String("host", "127.0.0.1", "Address to listen on (overrides http.host)")
	serveCmd.Flags().StringSlice("allowed-origin", nil, "Browser origins allowed to call the API and open keepalive ports (overrides http.allowed_origins)")
}
