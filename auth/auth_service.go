package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-calendar-gateway/internal/config"
	"github.com/jrsteele09/go-calendar-gateway/internal/errors"
	"github.com/jrsteele09/go-calendar-gateway/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateToken is sent with every consent URL. The flow keeps no per-request state,
// so the callback does not check it.
const stateToken = "state-token"

// AuthorizationService runs the OAuth2 authorization-code flow against the calendar
// provider and publishes the resulting credentials to the session store.
type AuthorizationService struct {
	oauth2Config *oauth2.Config
	sessions     sessions.Writer
	verifier     IdentityVerifier // nil unless an issuer was discovered or one was injected
	httpClient   *http.Client     // nil means http.DefaultClient
	nowTime      func() time.Time
	endpointSet  bool
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// WithEndpoint replaces the provider endpoint and skips issuer discovery.
func WithEndpoint(endpoint oauth2.Endpoint) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.oauth2Config.Endpoint = endpoint
		as.endpointSet = true
	}
}

// WithHTTPClient sets the client used for discovery and the token exchange.
func WithHTTPClient(client *http.Client) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.httpClient = client
	}
}

// WithIdentityVerifier sets the verifier applied to id_tokens in token responses.
func WithIdentityVerifier(v IdentityVerifier) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.verifier = v
	}
}

// NewAuthorizationService builds the OAuth2 client configuration. With an issuer
// configured the endpoints come from OpenID Connect discovery and id_tokens are verified;
// otherwise the static Google endpoint is used.
func NewAuthorizationService(ctx context.Context, cfg config.OAuthConfig, store sessions.Writer, opts ...AuthorizationServiceOption) (*AuthorizationService, error) {
	as := &AuthorizationService{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			RedirectURL:  cfg.GetRedirectURL(),
			Endpoint:     google.Endpoint,
			Scopes:       cfg.GetScopes(),
		},
		sessions: store,
		nowTime:  time.Now,
	}
	for _, opt := range opts {
		opt(as)
	}

	if issuer := cfg.GetIssuer(); issuer != "" && !as.endpointSet {
		provider, err := oidc.NewProvider(as.clientContext(ctx), issuer)
		if err != nil {
			return nil, fmt.Errorf("[auth NewAuthorizationService] failed to discover issuer %s: %w", issuer, err)
		}
		as.oauth2Config.Endpoint = provider.Endpoint()
		as.oauth2Config.Scopes = append(as.oauth2Config.Scopes, oidc.ScopeOpenID, "email")
		if as.verifier == nil {
			as.verifier = NewOIDCVerifier(provider, cfg.GetClientID())
		}
	}

	return as, nil
}

// BeginAuthorization returns the provider consent URL. It requests offline access and
// the configured scopes; nothing is stored.
func (as *AuthorizationService) BeginAuthorization() string {
	return as.oauth2Config.AuthCodeURL(stateToken, oauth2.AccessTypeOffline)
}

// CompleteAuthorization exchanges code for a token and stores the resulting credentials,
// replacing any previous set. On failure the session is left untouched and an
// UpstreamFailure is returned.
func (as *AuthorizationService) CompleteAuthorization(ctx context.Context, code string) (sessions.Credentials, error) {
	token, err := as.oauth2Config.Exchange(as.clientContext(ctx), code)
	if err != nil {
		return sessions.Credentials{}, errors.Upstream("auth.CompleteAuthorization", errors.Wrapf(err, "token exchange"))
	}

	identity, err := as.identity(ctx, token)
	if err != nil {
		return sessions.Credentials{}, errors.Upstream("auth.CompleteAuthorization", err)
	}

	creds := sessions.Credentials{
		Token:      token,
		Identity:   identity,
		ObtainedAt: as.nowTime(),
	}
	as.sessions.Set(creds)
	log.Info().Str("identity", creds.Label()).Time("expiry", token.Expiry).Msg("Stored new calendar credentials")
	return creds, nil
}

// Scopes returns the scopes requested on the consent URL.
func (as *AuthorizationService) Scopes() []string {
	return as.oauth2Config.Scopes
}

func (as *AuthorizationService) clientContext(ctx context.Context) context.Context {
	if as.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, as.httpClient)
}
