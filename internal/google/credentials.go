package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tobedoit/gCalendar-mcp/internal/config"
	"github.com/tobedoit/gCalendar-mcp/internal/instrumentation"
)

// Token refresh outcomes reported to a RefreshRecorder.
const (
	RefreshSuccess = instrumentation.OAuthResultSuccess
	RefreshFailure = instrumentation.OAuthResultFailure
)

// RefreshRecorder receives one call per refresh-token exchange.
type RefreshRecorder interface {
	RecordOAuthTokenRefresh(ctx context.Context, result string)
}

// Credentials is the authorization context for Calendar calls.
// It is read-only after construction.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenURL     string
}

// NewCredentials builds Credentials from the loaded configuration.
func NewCredentials(cfg config.GoogleConfig) Credentials {
	return Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
		TokenURL:     cfg.TokenURL,
	}
}

// OAuthConfig returns the OAuth2 client configuration.
func (c Credentials) OAuthConfig() *oauth2.Config {
	endpoint := google.Endpoint
	if c.TokenURL != "" {
		endpoint.TokenURL = c.TokenURL
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       CalendarScopes,
	}
}

// TokenSource returns a token source that exchanges the refresh token for
// access tokens when the cached one is missing or expired. Each exchange is
// reported to recorder, which may be nil.
func (c Credentials) TokenSource(ctx context.Context, recorder RefreshRecorder) (oauth2.TokenSource, error) {
	if c.RefreshToken == "" {
		return nil, &config.MissingError{Keys: []string{config.EnvRefreshToken}}
	}

	refresher := c.OAuthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})
	return oauth2.ReuseTokenSource(nil, &recordingTokenSource{
		ctx:      ctx,
		src:      refresher,
		recorder: recorder,
	}), nil
}

// HTTPClient returns an HTTP client that authorizes every request.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors
func (c Credentials) HTTPClient(ctx context.Context, recorder RefreshRecorder) (*http.Client, error) {
	ts, err := c.TokenSource(ctx, recorder)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ForceAttemptHTTP2 = false
	client.Transport.(*oauth2.Transport).Base = base

	return client, nil
}

// recordingTokenSource reports every call that reaches the refresher.
type recordingTokenSource struct {
	ctx      context.Context
	src      oauth2.TokenSource
	recorder RefreshRecorder
}

func (s *recordingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if s.recorder != nil {
		result := RefreshSuccess
		if err != nil {
			result = RefreshFailure
		}
		s.recorder.RecordOAuthTokenRefresh(s.ctx, result)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to refresh Google access token: %w", err)
	}
	return tok, nil
}
