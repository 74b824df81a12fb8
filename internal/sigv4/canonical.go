package sigv4

import (
	"strconv"
	"strings"

	apperrors "github.com/mowind/rdsauth-go/internal/errors"
)

// CanonicalRequest carries the canonical serialization of one signing context.
//
// Query is the canonical query string without the signature parameter; the
// token assembler appends X-Amz-Signature to it. Text is the full canonical
// request that gets hashed into the string-to-sign. Both are derived once and
// never mutated.
type CanonicalRequest struct {
	Query string
	Text  string
}

// BuildCanonicalRequest deterministically serializes the signing context.
//
// The output must be byte-for-byte reproducible: the server recomputes the
// same structure for verification. Parameter order is fixed; values are
// RFC 3986 percent-encoded.
//
// Returns:
//   - CanonicalRequest: the canonical query string and full canonical text
//   - error: an input or encoding AppError for malformed contexts
func BuildCanonicalRequest(sc SigningContext) (CanonicalRequest, error) {
	if err := sc.Validate(); err != nil {
		return CanonicalRequest{}, err
	}
	if err := checkEncodable("user", sc.DBUser); err != nil {
		return CanonicalRequest{}, err
	}
	if err := checkHost(sc.Host); err != nil {
		return CanonicalRequest{}, err
	}

	scope := sc.Scope()
	timestamp := sc.SigningTime.UTC().Format(timeFormat)
	expiry := strconv.Itoa(int(sc.Expiry.Seconds()))

	params := []string{
		"Action=connect",
		"DBUser=" + uriEncode(sc.DBUser),
		"X-Amz-Algorithm=" + SigningAlgorithm,
		"X-Amz-Credential=" + uriEncode(scope.Credential(sc.AccessKeyID)),
		"X-Amz-Date=" + timestamp,
		"X-Amz-Expires=" + expiry,
	}
	if sc.SessionToken != "" {
		// Lexical slot: Security-Token sorts after Expires and before
		// SignedHeaders, keeping the canonical query sorted by key.
		params = append(params, "X-Amz-Security-Token="+uriEncode(sc.SessionToken))
	}
	params = append(params, "X-Amz-SignedHeaders=host")

	query := strings.Join(params, "&")

	var b strings.Builder
	b.WriteString("GET\n")
	b.WriteString("/\n")
	b.WriteString(query)
	b.WriteByte('\n')
	b.WriteString("host:")
	b.WriteString(sc.Host)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(sc.Port))
	b.WriteString("\n\n")
	b.WriteString("host\n")
	b.WriteString(emptyPayloadSHA256)

	return CanonicalRequest{Query: query, Text: b.String()}, nil
}

// uriEncode percent-encodes s per RFC 3986: unreserved characters pass
// through, everything else becomes %XX with upper-case hex. net/url's
// QueryEscape is unsuitable here because it encodes space as '+'.
func uriEncode(s string) string {
	const upperhex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xf])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

// checkEncodable rejects values that cannot be safely escaped into the
// canonical query string. Control bytes survive percent-encoding but signal
// corrupted input, so they are treated as an encoding error rather than
// silently producing a server-rejected token.
func checkEncodable(field, value string) error {
	for i := 0; i < len(value); i++ {
		if value[i] < 0x20 || value[i] == 0x7f {
			return apperrors.Newf(apperrors.ErrorTypeEncoding,
				"%s contains control byte 0x%02x at position %d", field, value[i], i)
		}
	}
	return nil
}

// checkHost rejects hosts that would break the canonical header line. The
// host is embedded unescaped in "host:<host>:<port>", so it must not contain
// separators or whitespace.
func checkHost(host string) error {
	if err := checkEncodable("host", host); err != nil {
		return err
	}
	if strings.ContainsAny(host, ":/?#@\\ \t") {
		return apperrors.Newf(apperrors.ErrorTypeEncoding, "host %q contains reserved characters", host)
	}
	return nil
}
