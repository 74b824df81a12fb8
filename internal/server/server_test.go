package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mowind/rdsauth-go/internal/config"
	"github.com/mowind/rdsauth-go/internal/sigv4"
	"github.com/mowind/rdsauth-go/internal/token"
)

var fixedNow = time.Date(2018, 1, 1, 12, 0, 0, 0, time.UTC)

func testServerConfig() *config.Config {
	return &config.Config{
		DB: config.DBConfig{
			Host: "mydb.abc123.eu-west-1.rds.amazonaws.com",
			Port: 3306,
			User: "dbiamuser",
		},
		AWS: config.AWSConfig{
			Region:          "eu-west-1",
			AccessKeyID:     "AKIAEXAMPLE",
			SecretAccessKey: "secretEXAMPLE",
			ExpirySeconds:   900,
		},
		HTTP: config.HTTPConfig{Host: "127.0.0.1", Port: 9010},
		Log:  config.LogConfig{Level: config.LogLevelError, Format: config.LogFormatJSON},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	srv, err := New(cfg, token.NewMinter(cfg))
	require.NoError(t, err)
	srv.now = func() time.Time { return fixedNow }
	return srv
}

// expectedToken computes the token the handler should vend, through the same
// public pipeline.
func expectedToken(t *testing.T, cfg *config.Config, user, host string, port int) string {
	t.Helper()
	sc := sigv4.NewSigningContext(user, cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey,
		cfg.AWS.Region, host, port, fixedNow)
	built, err := sigv4.BuildAuthToken(sc)
	require.NoError(t, err)
	return built.String()
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t, testServerConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestServer_TokenWithConfiguredDefaults(t *testing.T) {
	cfg := testServerConfig()
	srv := newTestServer(t, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", nil)
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, expectedToken(t, cfg, "dbiamuser", cfg.DB.Host, cfg.DB.Port), resp.Token)
	assert.Equal(t, "dbiamuser", resp.User)
	assert.Equal(t, cfg.DB.Host+":3306", resp.Endpoint)
	assert.Equal(t, fixedNow.Add(900*time.Second).Format(time.RFC3339), resp.ExpiresAt)
}

func TestServer_TokenWithExplicitTarget(t *testing.T) {
	cfg := testServerConfig()
	srv := newTestServer(t, cfg)

	body := `{"user":"reporting","host":"replica.abc123.eu-west-1.rds.amazonaws.com","port":3307}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(body))
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, expectedToken(t, cfg, "reporting", "replica.abc123.eu-west-1.rds.amazonaws.com", 3307), resp.Token)
}

func TestServer_TokenBadRequests(t *testing.T) {
	srv := newTestServer(t, testServerConfig())

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"user":`},
		{"bad port", `{"port":70000}`},
		{"bad host", `{"host":"my db"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(tt.body))
			srv.Handler().ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestServer_RequestIDEchoed(t *testing.T) {
	srv := newTestServer(t, testServerConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-Id"))

	// A generated id is returned when none is supplied.
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestServer_APIKeyMiddleware(t *testing.T) {
	cfg := testServerConfig()
	cfg.HTTP.APIKey = "sekrit"
	srv := newTestServer(t, cfg)

	// Health is whitelisted.
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// No credentials.
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/token", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong key.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/token", nil)
	req.Header.Set("X-API-Key", "wrong")
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Correct key.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/token", nil)
	req.Header.Set("X-API-Key", "sekrit")
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Bearer form.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/token", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
