package config

import "google.golang.org/api/calendar/v3"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURL() string
	GetIssuer() string
	GetScopes() []string
}

const (
	clientIDVar     = "CLIENT_ID"
	clientSecretVar = "SECRET_ID"
	secretAliasVar  = "CLIENT_SECRET"
	redirectVar     = "REDIRECT"
	issuerVar       = "OAUTH_ISSUER"
)

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

// GetClientSecret reads SECRET_ID, falling back to CLIENT_SECRET.
func (OAuth) GetClientSecret() string {
	return GetEnv(clientSecretVar, GetEnv(secretAliasVar, ""))
}

func (OAuth) GetRedirectURL() string {
	return GetEnv(redirectVar, "http://localhost"+EnvVars{}.GetPort()+"/redirect")
}

// GetIssuer returns the OpenID Connect issuer used for endpoint discovery. Empty means
// the static Google endpoint is used and no discovery happens.
func (OAuth) GetIssuer() string {
	return GetEnv(issuerVar, "")
}

func (OAuth) GetScopes() []string {
	return []string{calendar.CalendarScope}
}
