package db

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/mowind/rdsauth-go/internal/config"
	apperrors "github.com/mowind/rdsauth-go/internal/errors"
	"github.com/mowind/rdsauth-go/internal/sigv4"
)

func testDBConfig() *config.DBConfig {
	return &config.DBConfig{
		Host: "mydb.abc123.eu-west-1.rds.amazonaws.com",
		Port: 3306,
		User: "dbiamuser",
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			"access denied",
			&mysql.MySQLError{Number: 1045, Message: "Access denied for user"},
			apperrors.ErrAuthentication,
		},
		{
			"access denied no password",
			&mysql.MySQLError{Number: 1698, Message: "Access denied"},
			apperrors.ErrAuthentication,
		},
		{
			"plugin denied",
			&mysql.MySQLError{Number: 3159, Message: "Connections using insecure transport are prohibited"},
			apperrors.ErrAuthentication,
		},
		{
			"other server error",
			&mysql.MySQLError{Number: 1049, Message: "Unknown database"},
			apperrors.ErrInternal,
		},
		{
			"no tls support",
			fmt.Errorf("handshake: %w", mysql.ErrNoTLS),
			apperrors.ErrTransport,
		},
		{
			"tls record error",
			tls.RecordHeaderError{Msg: "first record does not look like a TLS handshake"},
			apperrors.ErrTransport,
		},
		{
			"unknown authority",
			x509.UnknownAuthorityError{},
			apperrors.ErrTransport,
		},
		{
			"dial failure",
			&net.OpError{Op: "dial", Err: stderrors.New("connection refused")},
			apperrors.ErrNetwork,
		},
		{
			"unrecognized",
			stderrors.New("something else"),
			apperrors.ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); !stderrors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want type of %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestConnector_TokenSourceErrorPropagates(t *testing.T) {
	wantErr := apperrors.New(apperrors.ErrorTypeInput, "no credentials")
	source := func(ctx context.Context, now time.Time) (*sigv4.AuthToken, error) {
		return nil, wantErr
	}

	c := NewConnector(testDBConfig(), source, testLogger())
	_, err := c.Connect(context.Background())
	if !stderrors.Is(err, apperrors.ErrInput) {
		t.Errorf("expected the token source error, got %v", err)
	}
}

func TestConnector_RegisterTLSBadCAFile(t *testing.T) {
	cfg := testDBConfig()
	cfg.CACertFile = filepath.Join(t.TempDir(), "missing.pem")

	source := func(ctx context.Context, now time.Time) (*sigv4.AuthToken, error) {
		t.Fatal("token source must not be called when TLS setup fails")
		return nil, nil
	}

	c := NewConnector(cfg, source, testLogger())
	_, err := c.Connect(context.Background())
	if !stderrors.Is(err, apperrors.ErrConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestConnector_RegisterTLSEmptyCAFile(t *testing.T) {
	cfg := testDBConfig()
	caFile := filepath.Join(t.TempDir(), "empty.pem")
	if err := os.WriteFile(caFile, []byte("not a certificate"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg.CACertFile = caFile

	c := NewConnector(cfg, nil, testLogger())
	_, err := c.Connect(context.Background())
	if !stderrors.Is(err, apperrors.ErrConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}
