package sigv4

import (
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/mowind/rdsauth-go/internal/errors"
)

// AuthToken is the final signed credential string, valid from its issue time
// for the expiry window it was signed with. It must be transmitted unmodified
// and only over an encrypted channel: the server verifies the exact bytes
// that were signed, so hashing it in transit makes it unverifiable, and an
// unencrypted channel exposes a live bearer credential.
type AuthToken struct {
	value     string
	issuedAt  time.Time
	expiresAt time.Time
}

// String returns the token string.
func (t *AuthToken) String() string { return t.value }

// IssuedAt returns the signing timestamp embedded in the token.
func (t *AuthToken) IssuedAt() time.Time { return t.issuedAt }

// ExpiresAt returns the end of the token's validity window.
func (t *AuthToken) ExpiresAt() time.Time { return t.expiresAt }

// ValidAt reports whether the token is inside its validity window at the
// given instant.
func (t *AuthToken) ValidAt(at time.Time) bool {
	return !at.Before(t.issuedAt) && !at.After(t.expiresAt)
}

// ParseToken reconstructs the validity window from a token string using its
// X-Amz-Date and X-Amz-Expires parameters. Any verifier reproducing the
// scheme derives expiry the same way.
func ParseToken(token string) (*AuthToken, error) {
	u, err := url.Parse("https://" + token)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeEncoding, "malformed auth token")
	}
	q := u.Query()

	dateVal := q.Get("X-Amz-Date")
	if dateVal == "" {
		return nil, apperrors.Newf(apperrors.ErrorTypeEncoding, "X-Amz-Date not found in auth token")
	}
	issuedAt, err := time.Parse(timeFormat, dateVal)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeEncoding, "invalid X-Amz-Date %q", dateVal)
	}

	expVal := q.Get("X-Amz-Expires")
	if expVal == "" {
		return nil, apperrors.Newf(apperrors.ErrorTypeEncoding, "X-Amz-Expires not found in auth token")
	}
	expires, err := strconv.Atoi(expVal)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeEncoding, "invalid X-Amz-Expires %q", expVal)
	}

	return &AuthToken{
		value:     token,
		issuedAt:  issuedAt,
		expiresAt: issuedAt.Add(time.Duration(expires) * time.Second),
	}, nil
}
