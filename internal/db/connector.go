// Package db establishes the TLS-encrypted database session authenticated by
// a signed auth token.
//
// The token replaces the password in the MySQL handshake. The server must see
// the exact bytes that were signed, so the driver is put into clear-text
// password mode instead of its default hash-based challenge, and TLS is
// mandatory: without it the full bearer token would cross the wire in clear
// text.
package db

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/mowind/rdsauth-go/internal/config"
	apperrors "github.com/mowind/rdsauth-go/internal/errors"
	"github.com/mowind/rdsauth-go/internal/sigv4"
)

// tlsConfigName keys the TLS config registered with the mysql driver.
const tlsConfigName = "rdsauth"

// TokenSource mints a fresh auth token anchored at the given instant.
// Each call must capture a new timestamp; resending a stale token after an
// authentication failure is pointless.
type TokenSource func(ctx context.Context, now time.Time) (*sigv4.AuthToken, error)

// Connector opens authenticated sessions to one database instance.
type Connector struct {
	cfg    *config.DBConfig
	tokens TokenSource
	logger *logrus.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewConnector creates a Connector for the configured instance.
func NewConnector(cfg *config.DBConfig, tokens TokenSource, logger *logrus.Logger) *Connector {
	return &Connector{
		cfg:    cfg,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Connect opens a TLS session and verifies it with a ping.
//
// On an authentication failure exactly one fresh token (fresh timestamp) is
// minted and retried; every other failure is returned as classified. TLS
// failures are fatal and never downgraded to an unencrypted connection.
//
// Returns:
//   - *sql.DB: an open connection pool the caller owns
//   - error: an authentication, transport or network AppError
func (c *Connector) Connect(ctx context.Context) (*sql.DB, error) {
	if err := c.registerTLS(); err != nil {
		return nil, err
	}

	conn, err := c.attempt(ctx)
	if err == nil {
		return conn, nil
	}
	if !errors.Is(err, apperrors.ErrAuthentication) {
		return nil, err
	}

	c.logger.WithFields(apperrors.ContextFields(ctx)).WithField("host", c.cfg.Host).
		Warn("authentication failed, retrying once with a fresh token")

	conn, retryErr := c.attempt(ctx)
	if retryErr != nil {
		return nil, retryErr
	}
	return conn, nil
}

// attempt runs one complete connection attempt with a newly minted token.
func (c *Connector) attempt(ctx context.Context) (*sql.DB, error) {
	token, err := c.tokens(ctx, c.now())
	if err != nil {
		return nil, err
	}

	mcfg := mysql.NewConfig()
	mcfg.User = c.cfg.User
	mcfg.Passwd = token.String()
	mcfg.Net = "tcp"
	mcfg.Addr = fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)
	mcfg.DBName = c.cfg.Database
	mcfg.TLSConfig = tlsConfigName
	// The server must receive the token unmodified for signature
	// verification; the default hashed challenge cannot be re-derived.
	mcfg.AllowCleartextPasswords = true
	mcfg.AllowNativePasswords = true
	if c.cfg.ConnectTimeoutSeconds > 0 {
		mcfg.Timeout = time.Duration(c.cfg.ConnectTimeoutSeconds) * time.Second
	}

	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInternal, "failed to build mysql connector")
	}

	conn := sql.OpenDB(connector)
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, classify(err)
	}

	c.logger.WithFields(apperrors.ContextFields(ctx)).WithFields(logrus.Fields{
		"host": c.cfg.Host,
		"port": c.cfg.Port,
		"user": c.cfg.User,
	}).Info("database session established")

	return conn, nil
}

// registerTLS installs the named TLS config with the driver. Server name
// verification is always on; an optional CA bundle pins the RDS certificate
// chain.
func (c *Connector) registerTLS() error {
	tlsCfg := &tls.Config{
		ServerName: c.cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	if c.cfg.CACertFile != "" {
		pem, err := os.ReadFile(c.cfg.CACertFile)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrorTypeConfig, "failed to read CA bundle %s", c.cfg.CACertFile)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return apperrors.Newf(apperrors.ErrorTypeConfig, "no certificates found in %s", c.cfg.CACertFile)
		}
		tlsCfg.RootCAs = pool
	}
	if err := mysql.RegisterTLSConfig(tlsConfigName, tlsCfg); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeInternal, "failed to register TLS config")
	}
	return nil
}

// MySQL server error numbers that mean the credential was rejected.
const (
	erAccessDenied       = 1044
	erAccessDeniedError  = 1045
	erAccessDeniedNoPass = 1698
	erPluginDenied       = 3159
)

// classify maps a connection failure onto the error taxonomy so callers can
// distinguish "credentials wrong" from "host unreachable".
func classify(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case erAccessDenied, erAccessDeniedError, erAccessDeniedNoPass, erPluginDenied:
			return apperrors.Wrap(err, apperrors.ErrorTypeAuthentication,
				"server rejected the auth token (signature, expiry window, or user not IAM-enabled)")
		default:
			return apperrors.Wrapf(err, apperrors.ErrorTypeInternal, "server error %d", mysqlErr.Number)
		}
	}

	if errors.Is(err, mysql.ErrNoTLS) {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransport,
			"server does not support TLS; refusing to send the token in clear text")
	}

	var recordErr tls.RecordHeaderError
	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &recordErr) || errors.As(err, &certErr) ||
		errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransport, "TLS negotiation failed")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperrors.Wrap(err, apperrors.ErrorTypeNetwork, "connection failed")
	}

	return apperrors.Wrap(err, apperrors.ErrorTypeNetwork, "connection failed")
}
