// Package token wires credential resolution and the signing pipeline into a
// single minting operation used by the CLI and the sidecar.
package token

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/mowind/rdsauth-go/internal/config"
	"github.com/mowind/rdsauth-go/internal/credentials"
	"github.com/mowind/rdsauth-go/internal/sigv4"
)

// resolveFunc matches credentials.Resolve; swappable for tests.
type resolveFunc func(ctx context.Context, cfg *config.AWSConfig) (aws.Credentials, error)

// Minter mints auth tokens for one AWS configuration.
type Minter struct {
	cfg     *config.Config
	resolve resolveFunc
}

// NewMinter creates a Minter backed by the real credential resolver.
func NewMinter(cfg *config.Config) *Minter {
	return &Minter{cfg: cfg, resolve: credentials.Resolve}
}

// Mint produces a token for the configured database target, anchored at now.
func (m *Minter) Mint(ctx context.Context, now time.Time) (*sigv4.AuthToken, error) {
	return m.MintFor(ctx, m.cfg.DB.User, m.cfg.DB.Host, m.cfg.DB.Port, now)
}

// MintFor produces a token for an explicit target, anchored at now. The
// timestamp is captured here once and threaded through the whole pipeline.
func (m *Minter) MintFor(ctx context.Context, user, host string, port int, now time.Time) (*sigv4.AuthToken, error) {
	creds, err := m.resolve(ctx, &m.cfg.AWS)
	if err != nil {
		return nil, err
	}

	sc := sigv4.NewSigningContext(user, creds.AccessKeyID, creds.SecretAccessKey,
		m.cfg.AWS.Region, host, port, now)
	sc.SessionToken = creds.SessionToken
	sc.Expiry = time.Duration(m.cfg.AWS.ExpirySeconds) * time.Second

	return sigv4.BuildAuthToken(sc)
}
