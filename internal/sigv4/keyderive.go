package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
)

// SigningKey is the 256-bit result of the key derivation chain. It exists
// only transiently: callers must Wipe it after producing a signature.
type SigningKey struct {
	key []byte
}

// DeriveSigningKey derives the per-request signing key from the secret access
// key via four chained HMAC-SHA256 operations:
//
//	kDate    = HMAC("AWS4"+secret, scope.Date)
//	kRegion  = HMAC(kDate, scope.Region)
//	kService = HMAC(kRegion, scope.Service)
//	key      = HMAC(kService, "aws4_request")
//
// Each stage keys the next with its raw binary output. Hex-encoding any
// intermediate silently produces a key incompatible with the server's
// independently derived one; the golden-vector tests pin every stage.
func DeriveSigningKey(secretAccessKey string, scope CredentialScope) *SigningKey {
	kDate := hmacSHA256([]byte("AWS4"+secretAccessKey), scope.Date)
	kRegion := hmacSHA256(kDate, scope.Region)
	kService := hmacSHA256(kRegion, scope.Service)
	key := hmacSHA256(kService, requestSuffix)

	wipe(kDate)
	wipe(kRegion)
	wipe(kService)

	return &SigningKey{key: key}
}

// Wipe zeroes the key material. The key is unusable afterwards.
func (k *SigningKey) Wipe() {
	wipe(k.key)
	k.key = nil
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
