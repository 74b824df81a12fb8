package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mowind/rdsauth-go/internal/server"
	"github.com/mowind/rdsauth-go/internal/token"
)

// serveCmd runs the token-vending sidecar.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP sidecar that vends auth tokens",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Starting rdsauth sidecar with configuration: %s\n", cfg.String())

	srv, err := server.New(cfg, token.NewMinter(cfg))
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	waitForInterrupt(srv)
	return nil
}

// waitForInterrupt blocks until a signal arrives, then shuts down gracefully.
func waitForInterrupt(srv *server.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	fmt.Fprintf(os.Stderr, "\nReceived signal: %v. Shutting down...\n", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		return
	}

	fmt.Fprintln(os.Stderr, "Sidecar shutdown complete")
}
