package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"mytodo/internal/backend/localfile"
	"mytodo/internal/config"
	"mytodo/internal/praise"
	"mytodo/internal/service"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	return &config.Config{
		Dir:                 t.TempDir(),
		Backend:             backend,
		CredentialsBackend:  "file",
		CredentialsPassword: "test",
	}
}

func TestOpen_Local(t *testing.T) {
	cfg := testConfig(t, config.BackendLocal)
	svc, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	require.IsType(t, &localfile.Store{}, svc)

	// no api key: praise fails and callers fall back
	_, err = svc.Praise(context.Background(), "x", "見習い")
	require.ErrorIs(t, err, praise.ErrNotConfigured)
}

func TestOpen_RemoteWithoutToken(t *testing.T) {
	_, err := Open(context.Background(), testConfig(t, config.BackendRemote))
	require.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestOpen_RemoteSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login":"octocat"}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, config.BackendRemote)
	cfg.ServerURL = srv.URL
	require.NoError(t, cfg.Credentials().SetToken("s3cret"))

	svc, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	sess, err := svc.Whoami(context.Background())
	require.NoError(t, err)
	require.Equal(t, "octocat", sess.Login)
	require.Equal(t, "Bearer s3cret", gotAuth)
}
