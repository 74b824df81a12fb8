package sigv4

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/mowind/rdsauth-go/internal/errors"
)

func TestAuthToken_ExpiryBoundary(t *testing.T) {
	sc := testContext()
	token, err := BuildAuthToken(sc)
	if err != nil {
		t.Fatalf("BuildAuthToken() error = %v", err)
	}

	issued := sc.SigningTime
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"at issue", issued, true},
		{"one second before expiry", issued.Add(899 * time.Second), true},
		{"at expiry", issued.Add(900 * time.Second), true},
		{"one second after expiry", issued.Add(901 * time.Second), false},
		{"before issue", issued.Add(-1 * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := token.ValidAt(tt.at); got != tt.want {
				t.Errorf("ValidAt(%s) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestParseToken_Roundtrip(t *testing.T) {
	sc := testContext()
	built, err := BuildAuthToken(sc)
	if err != nil {
		t.Fatalf("BuildAuthToken() error = %v", err)
	}

	parsed, err := ParseToken(built.String())
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if !parsed.IssuedAt().Equal(built.IssuedAt()) {
		t.Errorf("IssuedAt = %s, want %s", parsed.IssuedAt(), built.IssuedAt())
	}
	if !parsed.ExpiresAt().Equal(built.ExpiresAt()) {
		t.Errorf("ExpiresAt = %s, want %s", parsed.ExpiresAt(), built.ExpiresAt())
	}
	// An independent verifier reproduces the same window.
	if !parsed.ValidAt(sc.SigningTime.Add(899 * time.Second)) {
		t.Error("parsed token should be valid at T+899s")
	}
	if parsed.ValidAt(sc.SigningTime.Add(901 * time.Second)) {
		t.Error("parsed token should be invalid at T+901s")
	}
}

func TestParseToken_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"missing date", "host:3306/?Action=connect&X-Amz-Expires=900"},
		{"missing expires", "host:3306/?Action=connect&X-Amz-Date=20180101T120000Z"},
		{"bad date", "host:3306/?X-Amz-Date=notadate&X-Amz-Expires=900"},
		{"bad expires", "host:3306/?X-Amz-Date=20180101T120000Z&X-Amz-Expires=soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.token); !errors.Is(err, apperrors.ErrEncoding) {
				t.Errorf("expected encoding error, got %v", err)
			}
		})
	}
}
