// Package utils provides common utility functions for internal packages.
package utils

import (
	"strings"
)

// IsValidHostname validates a database endpoint hostname.
//
// The hostname is embedded unescaped in the canonical header line of the
// signed request, so anything that could smuggle a separator is rejected:
// it must be non-empty, contain no whitespace or URL-reserved characters,
// and consist of dot-separated non-empty labels.
//
// Parameters:
//   - host: The hostname to validate
//
// Returns:
//   - bool: true if the hostname is usable, false otherwise
func IsValidHostname(host string) bool {
	if host == "" || len(host) > 255 {
		return false
	}
	if strings.ContainsAny(host, "/?#@:\\ \t\r\n") {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

// IsValidDBUser validates a database username for token signing.
//
// Any byte is representable after percent-encoding, but control bytes in a
// username always indicate corrupted input.
func IsValidDBUser(user string) bool {
	if user == "" {
		return false
	}
	for i := 0; i < len(user); i++ {
		if user[i] < 0x20 || user[i] == 0x7f {
			return false
		}
	}
	return true
}

// IsValidPort reports whether p is a usable TCP port.
func IsValidPort(p int) bool {
	return p > 0 && p <= 65535
}
