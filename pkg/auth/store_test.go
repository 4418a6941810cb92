package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/harrisonrobin/morrow/pkg/errs"
)

// newTestStore wires a Store against a fake token endpoint and counts
// refresh calls.
func newTestStore(t *testing.T, handler http.HandlerFunc) (*Store, *int) {
	t.Helper()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store := &Store{
		path: filepath.Join(t.TempDir(), "credentials.json"),
		oauth: &oauth2.Config{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/auth",
				TokenURL: srv.URL + "/token",
			},
		},
		margin: 5 * time.Minute,
		now:    time.Now,
	}
	return store, &calls
}

func grantToken(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"access_token":"fresh-token","token_type":"Bearer","expires_in":3600}`))
}

func TestEnsureValidRefreshesNearExpiry(t *testing.T) {
	store, calls := newTestStore(t, grantToken)
	require.NoError(t, store.Save(&Credential{
		AccessToken:  "stale-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(2 * time.Minute).Unix(),
	}))

	cred, err := store.EnsureValid(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, *calls, "expected exactly one refresh call")
	assert.Equal(t, "fresh-token", cred.AccessToken)
	assert.Equal(t, "refresh-token", cred.RefreshToken, "refresh token must survive an exchange that omits it")

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", persisted.AccessToken, "refreshed credential must be persisted")
}

func TestEnsureValidSkipsRefreshWhenFresh(t *testing.T) {
	store, calls := newTestStore(t, grantToken)
	require.NoError(t, store.Save(&Credential{
		AccessToken:  "current-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(30 * time.Minute).Unix(),
	}))

	cred, err := store.EnsureValid(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, *calls, "expected zero network calls for a fresh token")
	assert.Equal(t, "current-token", cred.AccessToken)
}

func TestEnsureValidRefreshesUnknownExpiry(t *testing.T) {
	store, calls := newTestStore(t, grantToken)
	require.NoError(t, store.Save(&Credential{
		RefreshToken: "refresh-token",
	}))

	cred, err := store.EnsureValid(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, "fresh-token", cred.AccessToken)
}

func TestEnsureValidWithoutCredentials(t *testing.T) {
	store, calls := newTestStore(t, grantToken)

	_, err := store.EnsureValid(context.Background())
	assert.True(t, errs.HasCode(err, errs.CodeAuthFailed))
	assert.Equal(t, 0, *calls)
}

func TestEnsureValidRefreshRejected(t *testing.T) {
	store, _ := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	})
	require.NoError(t, store.Save(&Credential{
		AccessToken:  "stale-token",
		RefreshToken: "revoked-token",
		ExpiresAt:    time.Now().Add(-time.Hour).Unix(),
	}))

	_, err := store.EnsureValid(context.Background())
	assert.True(t, errs.HasCode(err, errs.CodeAuthFailed))
}

func TestCredentialRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	want := &Credential{AccessToken: "a", RefreshToken: "r", ExpiresAt: 1234567890}

	require.NoError(t, saveCredential(path, want))
	got, err := loadCredential(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	missing, err := loadCredential(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
