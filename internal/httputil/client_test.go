package httputil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientAppliesTimeout(t *testing.T) {
	client, err := NewClient(ClientConfig{Timeout: 2 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, client.Timeout)

	client, err = NewClient(ClientConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, client.Timeout)
}

func TestNewClientSendsBearerToken(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authHeader = req.Header.Get("Authorization")
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BearerToken: "secret"})
	require.NoError(t, err)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer secret", authHeader)
}

func TestNewClientSendsBearerTokenFromFile(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("from-file\n"), 0o600))

	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authHeader = req.Header.Get("Authorization")
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BearerTokenFile: tokenFile})
	require.NoError(t, err)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer from-file", authHeader)
}

func TestNewClientRejectsMismatchedCertConfig(t *testing.T) {
	_, err := NewClient(ClientConfig{TLSConfig: TLSConfig{CertFile: "/some/cert.pem"}})
	assert.Error(t, err)
}

func TestFromFile(t *testing.T) {
	confFile := filepath.Join(t.TempDir(), "http.yaml")
	require.NoError(t, os.WriteFile(confFile, []byte(sampleConf), 0o644))

	cfg, err := FromFile(confFile)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "/var/run/secrets/backend/token", cfg.BearerTokenFile)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
