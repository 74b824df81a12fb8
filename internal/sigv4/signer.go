package sigv4

import (
	"encoding/hex"
	"strconv"
)

// Sign computes the hex HMAC-SHA256 signature of the string-to-sign under
// the derived signing key.
func Sign(stringToSign string, key *SigningKey) string {
	return hex.EncodeToString(hmacSHA256(key.key, stringToSign))
}

// BuildAuthToken runs the full pipeline: canonical request, string-to-sign,
// key derivation, signature, token assembly. The result is stable and
// reproducible: identical contexts yield byte-identical tokens.
//
// The derived signing key is wiped before returning; the secret access key
// itself stays inside the context the caller owns.
//
// Returns:
//   - *AuthToken: the assembled token, ready for use as a password equivalent
//   - error: an input or encoding AppError; no network I/O happens here
func BuildAuthToken(sc SigningContext) (*AuthToken, error) {
	cr, err := BuildCanonicalRequest(sc)
	if err != nil {
		return nil, err
	}

	scope := sc.Scope()
	stringToSign := BuildStringToSign(cr, scope, sc.SigningTime)

	key := DeriveSigningKey(sc.SecretAccessKey, scope)
	signature := Sign(stringToSign, key)
	key.Wipe()

	token := sc.Host + ":" + strconv.Itoa(sc.Port) + "/?" + cr.Query + "&X-Amz-Signature=" + signature

	return &AuthToken{
		value:     token,
		issuedAt:  sc.SigningTime,
		expiresAt: sc.SigningTime.Add(sc.Expiry),
	}, nil
}
