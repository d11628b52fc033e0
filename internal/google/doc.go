// Package google provides OAuth2 authorization for Google API calls.
//
// Credentials wraps a fixed client id, client secret and refresh token. The
// refresh token is exchanged for short-lived access tokens on demand; callers
// of the resulting HTTP client never see the exchange. Access tokens are
// cached only by the oauth2 token source itself.
package google
