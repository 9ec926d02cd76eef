package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vango-dev/orbit/internal/demo"
	"github.com/vango-dev/orbit/internal/dev"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [page.html]",
		Short: "Serve a page in the playground",
		Long: `Serve a page in the playground.

The runtime runs on the server, one session per browser tab. The
page reloads in connected browsers when it changes on disk.

Endpoints:
  /                 the page with the playground client
  /_orbit/session   the session WebSocket
  /metrics          Prometheus metrics (if metrics.enabled)
  /healthz          liveness

Examples:
  orbit serve
  orbit serve demo.html --addr=:8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			server, err := dev.NewServer(dev.ServerOptions{
				Config: cfg,
				Page:   pagePath(cfg, args),
				Addr:   addr,
				Setup:  demo.Register,
				Logger: logger,
				OnReload: func(sessions int) {
					success("Reloaded %d sessions", sessions)
				},
			})
			if err != nil {
				return err
			}

			printBanner()
			fmt.Println("  playground")
			fmt.Println()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\n\n  Shutting down...")
				cancel()
			}()

			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from orbit.json)")

	return cmd
}
