package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mowind/rdsauth-go/internal/config"
)

// Flag defines one command line flag.
type Flag struct {
	Name         string
	DefaultValue interface{}
	Description  string
	BindTo       string // viper key
}

// flags defines all command line flags.
var flags = []Flag{
	// Target database
	{
		Name:         "db-host",
		DefaultValue: "",
		Description:  "Database endpoint hostname (required)",
		BindTo:       "db.host",
	},
	{
		Name:         "db-port",
		DefaultValue: config.DefaultDBPort,
		Description:  "Database port",
		BindTo:       "db.port",
	},
	{
		Name:         "db-user",
		DefaultValue: "",
		Description:  "Database username with IAM authentication enabled (required)",
		BindTo:       "db.user",
	},
	{
		Name:         "db-database",
		DefaultValue: "",
		Description:  "Database schema to select on connect",
		BindTo:       "db.database",
	},
	{
		Name:         "db-ca-cert-file",
		DefaultValue: "",
		Description:  "PEM bundle to pin the server certificate chain (e.g. the RDS CA bundle)",
		BindTo:       "db.ca-cert-file",
	},
	{
		Name:         "db-connect-timeout-seconds",
		DefaultValue: config.DefaultConnectTimeoutSeconds,
		Description:  "Timeout for the connection attempt",
		BindTo:       "db.connect-timeout-seconds",
	},

	// AWS signing
	{
		Name:         "aws-region",
		DefaultValue: "",
		Description:  "AWS region of the database instance (required)",
		BindTo:       "aws.region",
	},
	{
		Name:         "aws-access-key-id",
		DefaultValue: "",
		Description:  "Static access key id (default credential chain when empty)",
		BindTo:       "aws.access-key-id",
	},
	{
		Name:         "aws-secret-access-key",
		DefaultValue: "",
		Description:  "Static secret access key",
		BindTo:       "aws.secret-access-key",
	},
	{
		Name:         "aws-session-token",
		DefaultValue: "",
		Description:  "Session token accompanying a temporary static pair",
		BindTo:       "aws.session-token",
	},
	{
		Name:         "aws-expiry-seconds",
		DefaultValue: config.DefaultTokenExpirySeconds,
		Description:  fmt.Sprintf("Token validity window in seconds (max %d)", config.MaxTokenExpirySeconds),
		BindTo:       "aws.expiry-seconds",
	},

	// Token sidecar
	{
		Name:         "http-host",
		DefaultValue: config.DefaultHTTPHost,
		Description:  "Sidecar bind host",
		BindTo:       "http.host",
	},
	{
		Name:         "http-port",
		DefaultValue: config.DefaultHTTPPort,
		Description:  "Sidecar port",
		BindTo:       "http.port",
	},
	{
		Name:         "http-api-key",
		DefaultValue: "",
		Description:  "API key required by the sidecar when set",
		BindTo:       "http.api-key",
	},

	// Logging
	{
		Name:         "log-level",
		DefaultValue: config.DefaultLogLevel,
		Description:  "Log level (debug, info, warn, error, fatal)",
		BindTo:       "log.level",
	},
	{
		Name:         "log-format",
		DefaultValue: config.DefaultLogFormat,
		Description:  "Log format (json, text)",
		BindTo:       "log.format",
	},
}

// registerFlags registers all command line flags on the root command.
func registerFlags(cmd *cobra.Command) error {
	for _, flag := range flags {
		switch v := flag.DefaultValue.(type) {
		case string:
			cmd.PersistentFlags().String(flag.Name, v, flag.Description)
		case int:
			cmd.PersistentFlags().Int(flag.Name, v, flag.Description)
		default:
			return fmt.Errorf("unsupported flag type: %T for flag %s", v, flag.Name)
		}

		if err := viper.BindPFlag(flag.BindTo, cmd.PersistentFlags().Lookup(flag.Name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag.Name, err)
		}
	}

	return nil
}
