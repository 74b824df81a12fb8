package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mowind/rdsauth-go/internal/db"
	apperrors "github.com/mowind/rdsauth-go/internal/errors"
	"github.com/mowind/rdsauth-go/internal/token"
)

// connectCmd establishes and verifies a database session.
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Open a TLS session to the database using a fresh auth token",
	RunE:  runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := apperrors.NewLogger(&apperrors.LoggerConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}

	minter := token.NewMinter(cfg)
	connector := db.NewConnector(&cfg.DB, minter.Mint, logger)

	timeout := time.Duration(cfg.DB.ConnectTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = apperrors.NewContextWithOperation(
		apperrors.NewContextWithRequestID(ctx, ""), "connect")

	conn, err := connector.Connect(ctx)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAuthentication):
			return fmt.Errorf("authentication rejected by the server: %w", err)
		case errors.Is(err, apperrors.ErrTransport):
			return fmt.Errorf("encrypted transport could not be established: %w", err)
		default:
			return err
		}
	}
	defer conn.Close()

	fmt.Printf("connected to %s:%d as %s\n", cfg.DB.Host, cfg.DB.Port, cfg.DB.User)
	return nil
}
