// Package sigv4 implements the AWS Signature Version 4 presigning scheme used
// by RDS IAM database authentication.
//
// Unlike a general SigV4 HTTP signer, this package never sends a request. It
// produces a short-lived bearer string ("auth token") that a database client
// presents as a password equivalent. The server independently recomputes the
// same canonical structure to verify the signature, so every encoding detail
// here (parameter order, percent-escaping, timestamp format) is part of the
// wire contract.
//
// The pipeline is a one-shot, stateless transform:
//
//	SigningContext -> CanonicalRequest -> StringToSign -> SigningKey -> AuthToken
//
// Each stage is a pure function; the signing time is captured once in the
// SigningContext and threaded through all stages.
package sigv4

import (
	"time"

	apperrors "github.com/mowind/rdsauth-go/internal/errors"
)

const (
	// SigningAlgorithm is the SigV4 algorithm identifier.
	SigningAlgorithm = "AWS4-HMAC-SHA256"

	// ServiceName is the RDS IAM authentication signing namespace.
	ServiceName = "rds-db"

	// MaxExpiry is the maximum token validity window accepted by RDS.
	// A larger value does not yield a longer-lived token; the server
	// rejects it after its own window check.
	MaxExpiry = 900 * time.Second

	// emptyPayloadSHA256 is the hex encoded SHA256 hash of an empty string.
	// The database-auth scheme always signs an empty body.
	emptyPayloadSHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// requestSuffix terminates every credential scope.
	requestSuffix = "aws4_request"

	// dateFormat is the YYYYMMDD scope date format.
	dateFormat = "20060102"

	// timeFormat is the YYYYMMDDTHHMMSSZ timestamp format, always UTC.
	timeFormat = "20060102T150405Z"
)

// SigningContext is the immutable input bundle for one token generation.
//
// SigningTime must be captured exactly once per token and is threaded through
// every stage; recomputing "now" in a later stage would desynchronize the
// canonical request from the signature.
type SigningContext struct {
	DBUser          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Host            string
	Port            int
	Expiry          time.Duration
	SigningTime     time.Time
}

// NewSigningContext builds a SigningContext with the signing time normalized
// to UTC and the expiry defaulted to the server maximum.
func NewSigningContext(user, accessKeyID, secretAccessKey, region, host string, port int, now time.Time) SigningContext {
	return SigningContext{
		DBUser:          user,
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretAccessKey,
		Region:          region,
		Host:            host,
		Port:            port,
		Expiry:          MaxExpiry,
		SigningTime:     now.UTC(),
	}
}

// Validate checks the context before any cryptographic work is done.
//
// Returns:
//   - error: an input-typed AppError naming the first missing or invalid field
func (sc SigningContext) Validate() error {
	switch {
	case sc.DBUser == "":
		return apperrors.Newf(apperrors.ErrorTypeInput, "database user is required")
	case sc.AccessKeyID == "":
		return apperrors.Newf(apperrors.ErrorTypeInput, "access key id is required")
	case sc.SecretAccessKey == "":
		return apperrors.Newf(apperrors.ErrorTypeInput, "secret access key is required")
	case sc.Region == "":
		return apperrors.Newf(apperrors.ErrorTypeInput, "region is required")
	case sc.Host == "":
		return apperrors.Newf(apperrors.ErrorTypeInput, "host is required")
	case sc.Port <= 0 || sc.Port > 65535:
		return apperrors.Newf(apperrors.ErrorTypeInput, "port must be between 1 and 65535, got %d", sc.Port)
	case sc.SigningTime.IsZero():
		return apperrors.Newf(apperrors.ErrorTypeInput, "signing time is required")
	}
	if sc.Expiry <= 0 || sc.Expiry > MaxExpiry {
		return apperrors.Newf(apperrors.ErrorTypeInput, "expiry must be between 1s and %s, got %s", MaxExpiry, sc.Expiry)
	}
	return nil
}

// Scope returns the credential scope derived from this context.
func (sc SigningContext) Scope() CredentialScope {
	return CredentialScope{
		Date:    sc.SigningTime.UTC().Format(dateFormat),
		Region:  sc.Region,
		Service: ServiceName,
	}
}

// CredentialScope is the date/region/service tuple that scopes a derived
// signing key. It must match exactly between the string-to-sign and the key
// derivation chain or the server-side signature check fails.
type CredentialScope struct {
	Date    string
	Region  string
	Service string
}

// String renders the scope as it appears in the string-to-sign.
func (cs CredentialScope) String() string {
	return cs.Date + "/" + cs.Region + "/" + cs.Service + "/" + requestSuffix
}

// Credential renders the X-Amz-Credential value for the given access key,
// before percent-escaping.
func (cs CredentialScope) Credential(accessKeyID string) string {
	return accessKeyID + "/" + cs.String()
}
