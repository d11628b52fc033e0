package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/google"

	"github.com/tobedoit/gCalendar-mcp/internal/config"
)

type fakeRecorder struct {
	mu      sync.Mutex
	results []string
}

func (r *fakeRecorder) RecordOAuthTokenRefresh(_ context.Context, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func newTokenServer(t *testing.T, status int, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-123", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = fmt.Fprint(w, `{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`)
			return
		}
		_, _ = fmt.Fprint(w, `{"access_token":"access-abc","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewCredentials(t *testing.T) {
	creds := NewCredentials(config.GoogleConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		TokenURL:     "http://example.test/token",
	})

	assert.Equal(t, "id", creds.ClientID)
	assert.Equal(t, "secret", creds.ClientSecret)
	assert.Equal(t, "refresh", creds.RefreshToken)
	assert.Equal(t, "http://example.test/token", creds.TokenURL)
}

func TestOAuthConfig(t *testing.T) {
	conf := Credentials{ClientID: "id", ClientSecret: "secret"}.OAuthConfig()
	assert.Equal(t, google.Endpoint.TokenURL, conf.Endpoint.TokenURL)
	assert.Equal(t, CalendarScopes, conf.Scopes)

	conf = Credentials{TokenURL: "http://example.test/token"}.OAuthConfig()
	assert.Equal(t, "http://example.test/token", conf.Endpoint.TokenURL)
	assert.Equal(t, google.Endpoint.AuthURL, conf.Endpoint.AuthURL)
}

func TestTokenSource_MissingRefreshToken(t *testing.T) {
	_, err := Credentials{ClientID: "id", ClientSecret: "secret"}.TokenSource(context.Background(), nil)
	require.Error(t, err)

	var missingErr *config.MissingError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, []string{config.EnvRefreshToken}, missingErr.Keys)
}

func TestTokenSource_RefreshesOnceAndCaches(t *testing.T) {
	var hits int32
	srv := newTokenServer(t, http.StatusOK, &hits)
	recorder := &fakeRecorder{}

	creds := Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh-123", TokenURL: srv.URL}
	ts, err := creds.TokenSource(context.Background(), recorder)
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-abc", tok.AccessToken)

	tok, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-abc", tok.AccessToken)

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Equal(t, []string{RefreshSuccess}, recorder.results)
}

func TestTokenSource_RefreshFailure(t *testing.T) {
	var hits int32
	srv := newTokenServer(t, http.StatusBadRequest, &hits)
	recorder := &fakeRecorder{}

	creds := Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh-123", TokenURL: srv.URL}
	ts, err := creds.TokenSource(context.Background(), recorder)
	require.NoError(t, err)

	_, err = ts.Token()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh Google access token")
	assert.Equal(t, []string{RefreshFailure}, recorder.results)
}

func TestHTTPClient_AuthorizesRequests(t *testing.T) {
	var hits int32
	tokenSrv := newTokenServer(t, http.StatusOK, &hits)

	var gotAuth string
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer apiSrv.Close()

	creds := Credentials{ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh-123", TokenURL: tokenSrv.URL}
	client, err := creds.HTTPClient(context.Background(), nil)
	require.NoError(t, err)

	resp, err := client.Get(apiSrv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "Bearer access-abc", gotAuth)
}
