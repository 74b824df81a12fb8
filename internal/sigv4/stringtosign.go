package sigv4

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// BuildStringToSign wraps the SHA256 digest of the canonical request with the
// algorithm identifier, timestamp and credential scope.
//
// Format: AWS4-HMAC-SHA256\n<timestamp>\n<scope>\n<sha256-hex(canonical)>.
// Pure and deterministic; the timestamp must be the one captured in the
// signing context, not a fresh read.
func BuildStringToSign(cr CanonicalRequest, scope CredentialScope, signingTime time.Time) string {
	digest := sha256.Sum256([]byte(cr.Text))

	var b strings.Builder
	b.WriteString(SigningAlgorithm)
	b.WriteByte('\n')
	b.WriteString(signingTime.UTC().Format(timeFormat))
	b.WriteByte('\n')
	b.WriteString(scope.String())
	b.WriteByte('\n')
	b.WriteString(hex.EncodeToString(digest[:]))
	return b.String()
}
