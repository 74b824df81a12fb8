package token

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/mowind/rdsauth-go/internal/config"
	apperrors "github.com/mowind/rdsauth-go/internal/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		DB: config.DBConfig{
			Host: "mydb.abc123.eu-west-1.rds.amazonaws.com",
			Port: 3306,
			User: "dbiamuser",
		},
		AWS: config.AWSConfig{
			Region:        "eu-west-1",
			ExpirySeconds: 900,
		},
	}
}

func staticResolver(creds aws.Credentials) resolveFunc {
	return func(ctx context.Context, cfg *config.AWSConfig) (aws.Credentials, error) {
		return creds, nil
	}
}

func TestMinter_Mint(t *testing.T) {
	m := &Minter{
		cfg: testConfig(),
		resolve: staticResolver(aws.Credentials{
			AccessKeyID:     "AKIAEXAMPLE",
			SecretAccessKey: "secretEXAMPLE",
		}),
	}

	now := time.Date(2018, 1, 1, 12, 0, 0, 0, time.UTC)
	token, err := m.Mint(context.Background(), now)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	if !strings.HasPrefix(token.String(), "mydb.abc123.eu-west-1.rds.amazonaws.com:3306/?") {
		t.Errorf("token does not target the configured endpoint: %s", token.String())
	}
	if !strings.Contains(token.String(), "X-Amz-Date=20180101T120000Z") {
		t.Errorf("token not anchored at the supplied instant: %s", token.String())
	}
	if !token.ExpiresAt().Equal(now.Add(900 * time.Second)) {
		t.Errorf("ExpiresAt = %s, want %s", token.ExpiresAt(), now.Add(900*time.Second))
	}
}

func TestMinter_MintForSessionCredentials(t *testing.T) {
	m := &Minter{
		cfg: testConfig(),
		resolve: staticResolver(aws.Credentials{
			AccessKeyID:     "AKIAEXAMPLE",
			SecretAccessKey: "secretEXAMPLE",
			SessionToken:    "FwoGZXIvYXdzEJr",
		}),
	}

	token, err := m.MintFor(context.Background(), "otheruser", "other.example.com", 3307,
		time.Date(2018, 1, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("MintFor() error = %v", err)
	}
	if !strings.Contains(token.String(), "X-Amz-Security-Token=") {
		t.Error("session token missing from minted token")
	}
	if !strings.Contains(token.String(), "DBUser=otheruser") {
		t.Error("explicit user not used")
	}
}

func TestMinter_ResolveFailureStopsPipeline(t *testing.T) {
	wantErr := apperrors.New(apperrors.ErrorTypeInput, "no credentials available")
	m := &Minter{
		cfg: testConfig(),
		resolve: func(ctx context.Context, cfg *config.AWSConfig) (aws.Credentials, error) {
			return aws.Credentials{}, wantErr
		},
	}

	_, err := m.Mint(context.Background(), time.Now())
	if !stderrors.Is(err, apperrors.ErrInput) {
		t.Errorf("expected resolver error, got %v", err)
	}
}
