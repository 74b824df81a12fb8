package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mowind/rdsauth-go/internal/token"
)

// tokenCmd prints a freshly signed auth token.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate an RDS IAM auth token and print it to stdout",
	Long: `Generate a signed auth token for the configured database target.

The token is printed to stdout only; nothing else is written there, so the
output can be piped directly into other tooling. The token is a live
credential for its validity window: present it unmodified, over TLS only.`,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	minter := token.NewMinter(cfg)
	authToken, err := minter.Mint(ctx, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, authToken.String())
	fmt.Fprintf(os.Stderr, "token valid until %s\n", authToken.ExpiresAt().UTC().Format(time.RFC3339))
	return nil
}
