package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNameFromPath(t *testing.T) {
	assert.Equal(t, "welcome-back", nameFromPath("emails/welcome-back.html"))
	assert.Equal(t, "plain", nameFromPath("plain"))
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"json":{"page":{}},"response_time":42}`))
	}))
	defer srv.Close()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("beefree:\n  api_token: tok\n  base_url: "+srv.URL+"\n"), 0o644))
	t.Setenv("BEEFREE_API_TOKEN", "")
	t.Setenv("BEEFREE_BASE_URL", "")

	out, err := execute(t, "ping", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully connected to Beefree API in 42ms")
}

func TestConvertRequiresOrg(t *testing.T) {
	_, err := execute(t, "convert", "missing.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--org is required")
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	_, err := execute(t, "convert", "missing.html", "--org", "acme", "--name", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read missing.html")

	_, err = execute(t, "convert", "missing.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--org is required")
}
