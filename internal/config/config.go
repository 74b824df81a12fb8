// Package config defines the application configuration loaded through viper.
package config

import (
	"fmt"
	"strings"
)

// Config is the complete application configuration.
type Config struct {
	// Target database configuration.
	DB DBConfig `mapstructure:"db"`

	// AWS signing configuration.
	AWS AWSConfig `mapstructure:"aws"`

	// Token sidecar HTTP configuration.
	HTTP HTTPConfig `mapstructure:"http"`

	// Logging configuration.
	Log LogConfig `mapstructure:"log"`
}

// DBConfig identifies the target database instance and user.
type DBConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	// Database is optional; connecting without selecting a schema is valid.
	Database string `mapstructure:"database"`
	// CACertFile optionally pins the RDS certificate bundle for TLS.
	CACertFile string `mapstructure:"ca-cert-file"`
	// ConnectTimeoutSeconds bounds the single blocking connection attempt.
	ConnectTimeoutSeconds int `mapstructure:"connect-timeout-seconds"`
}

// Validate checks the database section.
func (c *DBConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("db-host is required")
	}
	if c.User == "" {
		return fmt.Errorf("db-user is required")
	}
	if c.Port <= 0 || c.Port > MaxPort {
		return fmt.Errorf("db-port must be between 1 and %d", MaxPort)
	}
	if c.ConnectTimeoutSeconds < 0 {
		return fmt.Errorf("db-connect-timeout-seconds must not be negative")
	}
	return nil
}

// AWSConfig carries the signing inputs. When AccessKeyID and SecretAccessKey
// are empty the SDK default credential chain is used instead.
type AWSConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access-key-id"`
	SecretAccessKey string `mapstructure:"secret-access-key"`
	SessionToken    string `mapstructure:"session-token"`
	ExpirySeconds   int    `mapstructure:"expiry-seconds"`
}

// Validate checks the AWS section.
func (c *AWSConfig) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("aws-region is required")
	}
	// A partial static pair is always a mistake; require both or neither.
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return fmt.Errorf("aws-access-key-id and aws-secret-access-key must be set together")
	}
	if c.ExpirySeconds <= 0 || c.ExpirySeconds > MaxTokenExpirySeconds {
		return fmt.Errorf("aws-expiry-seconds must be between 1 and %d", MaxTokenExpirySeconds)
	}
	return nil
}

// HTTPConfig configures the token sidecar.
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// APIKey enables the auth middleware when non-empty.
	APIKey string `mapstructure:"api-key"`
}

// Validate checks the HTTP section.
func (c *HTTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("http-host is required")
	}
	if c.Port <= 0 || c.Port > MaxPort {
		return fmt.Errorf("http-port must be between 1 and %d", MaxPort)
	}
	return nil
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks the logging section.
func (c *LogConfig) Validate() error {
	if !validLogLevels[c.Level] {
		return fmt.Errorf("log-level must be one of: debug, info, warn, error, fatal")
	}
	if !validLogFormats[c.Format] {
		return fmt.Errorf("log-format must be one of: json, text")
	}
	return nil
}

// Validate validates every section.
func (c *Config) Validate() error {
	validators := []Validator{&c.DB, &c.AWS, &c.HTTP, &c.Log}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// String renders a configuration summary with credentials masked.
func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "db=%s:%d user=%s region=%s expiry=%ds",
		c.DB.Host, c.DB.Port, c.DB.User, c.AWS.Region, c.AWS.ExpirySeconds)
	if c.AWS.AccessKeyID != "" {
		fmt.Fprintf(&b, " credentials=static(%s)", maskAccessKey(c.AWS.AccessKeyID))
	} else {
		b.WriteString(" credentials=default-chain")
	}
	return b.String()
}

// maskAccessKey keeps the first four characters of an access key id, enough
// to tell keys apart in logs without disclosing them.
func maskAccessKey(id string) string {
	if len(id) <= 4 {
		return "****"
	}
	return id[:4] + strings.Repeat("*", len(id)-4)
}
