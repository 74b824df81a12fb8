// Package credentials resolves the access-key/secret pair used for signing.
//
// How the pair is obtained is a boundary concern: the signing core only
// requires that one exists. A static pair from configuration wins; otherwise
// the SDK default chain (environment, shared config, IMDS, SSO) is consulted.
package credentials

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/mowind/rdsauth-go/internal/config"
	apperrors "github.com/mowind/rdsauth-go/internal/errors"
)

// Resolve returns the credentials to sign with.
//
// Parameters:
//   - ctx: cancellation for the default-chain lookup, which may do network I/O
//   - cfg: the AWS configuration section
//
// Returns:
//   - aws.Credentials: a non-empty access-key/secret pair, possibly with a
//     session token
//   - error: an input AppError when no usable credentials exist
func Resolve(ctx context.Context, cfg *config.AWSConfig) (aws.Credentials, error) {
	if cfg.AccessKeyID != "" {
		provider := awscreds.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
		creds, err := provider.Retrieve(ctx)
		if err != nil {
			return aws.Credentials{}, apperrors.Wrap(err, apperrors.ErrorTypeInput, "static credentials rejected")
		}
		return creds, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Credentials{}, apperrors.Wrap(err, apperrors.ErrorTypeConfig, "failed to load AWS configuration")
	}
	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, apperrors.Wrap(err, apperrors.ErrorTypeInput, "no credentials available from the default chain")
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, apperrors.New(apperrors.ErrorTypeInput, "resolved credentials are incomplete")
	}
	return creds, nil
}
