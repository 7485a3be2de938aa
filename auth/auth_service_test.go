package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-calendar-gateway/auth"
	"github.com/jrsteele09/go-calendar-gateway/internal/errors"
	"github.com/jrsteele09/go-calendar-gateway/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testClientID     = "test-client-1"
	testClientSecret = "test-secret-1"
	testRedirectURI  = "http://localhost:3000/redirect"
	calendarScope    = "https://www.googleapis.com/auth/calendar"
	goodCode         = "good-code"
)

type testOAuthConfig struct {
	issuer string
}

func (testOAuthConfig) GetClientID() string     { return testClientID }
func (testOAuthConfig) GetClientSecret() string { return testClientSecret }
func (testOAuthConfig) GetRedirectURL() string  { return testRedirectURI }
func (c testOAuthConfig) GetIssuer() string     { return c.issuer }
func (testOAuthConfig) GetScopes() []string     { return []string{calendarScope} }

type tokenResponder func(w http.ResponseWriter, code string)

// newTokenServer fakes the provider token endpoint.
func newTokenServer(t *testing.T, respond tokenResponder) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.FormValue("grant_type") != "authorization_code" {
			http.Error(w, "unexpected token request", http.StatusBadRequest)
			return
		}
		respond(w, r.FormValue("code"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeToken(w http.ResponseWriter, fields map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(fields)
}

func writeInvalidGrant(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad Request"}`))
}

// standardResponder issues "access-<code>" for goodCode and any code prefixed "ok-".
func standardResponder(extra map[string]any) tokenResponder {
	return func(w http.ResponseWriter, code string) {
		if code != goodCode && (len(code) < 3 || code[:3] != "ok-") {
			writeInvalidGrant(w)
			return
		}
		fields := map[string]any{
			"access_token":  "access-" + code,
			"refresh_token": "refresh-" + code,
			"token_type":    "Bearer",
			"expires_in":    3600,
		}
		for k, v := range extra {
			fields[k] = v
		}
		writeToken(w, fields)
	}
}

type testFixture struct {
	store   *sessions.Store
	service *auth.AuthorizationService
	now     time.Time
}

func setupTestFixture(t *testing.T, srv *httptest.Server, opts ...auth.AuthorizationServiceOption) *testFixture {
	t.Helper()

	f := &testFixture{
		store: sessions.NewStore(),
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	allOpts := []auth.AuthorizationServiceOption{
		auth.WithNowTime(func() time.Time { return f.now }),
	}
	if srv != nil {
		allOpts = append(allOpts,
			auth.WithHTTPClient(srv.Client()),
			auth.WithEndpoint(oauth2.Endpoint{
				AuthURL:   srv.URL + "/auth",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			}),
		)
	}
	allOpts = append(allOpts, opts...)

	service, err := auth.NewAuthorizationService(context.Background(), testOAuthConfig{}, f.store, allOpts...)
	require.NoError(t, err)
	f.service = service
	return f
}

func TestBeginAuthorization_GoogleEndpoint(t *testing.T) {
	f := setupTestFixture(t, nil)

	consentURL, err := url.Parse(f.service.BeginAuthorization())
	require.NoError(t, err)
	require.Equal(t, "accounts.google.com", consentURL.Host)

	q := consentURL.Query()
	require.Equal(t, "offline", q.Get("access_type"))
	require.Equal(t, calendarScope, q.Get("scope"))
	require.Equal(t, testClientID, q.Get("client_id"))
	require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
	require.Equal(t, "code", q.Get("response_type"))
	require.False(t, f.store.IsAuthorized())
}

func TestCompleteAuthorization_StoresCredentials(t *testing.T) {
	srv := newTokenServer(t, standardResponder(nil))
	f := setupTestFixture(t, srv)

	creds, err := f.service.CompleteAuthorization(context.Background(), goodCode)
	require.NoError(t, err)
	require.Equal(t, "access-"+goodCode, creds.Token.AccessToken)
	require.Equal(t, "refresh-"+goodCode, creds.Token.RefreshToken)
	require.Equal(t, f.now, creds.ObtainedAt)

	require.True(t, f.store.IsAuthorized())
	stored := f.store.Current().MustGet()
	require.Equal(t, "access-"+goodCode, stored.Token.AccessToken)
}

func TestCompleteAuthorization_FailureLeavesSessionUntouched(t *testing.T) {
	srv := newTokenServer(t, standardResponder(nil))
	f := setupTestFixture(t, srv)

	t.Run("before any login", func(t *testing.T) {
		_, err := f.service.CompleteAuthorization(context.Background(), "bad-code")
		require.Error(t, err)
		require.True(t, errors.IsUpstream(err))
		require.False(t, f.store.IsAuthorized())
	})

	t.Run("after a login", func(t *testing.T) {
		_, err := f.service.CompleteAuthorization(context.Background(), goodCode)
		require.NoError(t, err)

		_, err = f.service.CompleteAuthorization(context.Background(), "")
		require.Error(t, err)
		require.Equal(t, "access-"+goodCode, f.store.Current().MustGet().Token.AccessToken)
	})
}

func TestCompleteAuthorization_UnverifiedIDToken(t *testing.T) {
	idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-123",
		"email": "person@example.com",
	}).SignedString([]byte("provider-key"))
	require.NoError(t, err)

	srv := newTokenServer(t, standardResponder(map[string]any{"id_token": idToken}))
	f := setupTestFixture(t, srv)

	creds, err := f.service.CompleteAuthorization(context.Background(), goodCode)
	require.NoError(t, err)
	require.Equal(t, sessions.Identity{Subject: "user-123", Email: "person@example.com"}, creds.Identity)
}

func TestCompleteAuthorization_UndecodableIDTokenIsIgnored(t *testing.T) {
	srv := newTokenServer(t, standardResponder(map[string]any{"id_token": "not-a-jwt"}))
	f := setupTestFixture(t, srv)

	creds, err := f.service.CompleteAuthorization(context.Background(), goodCode)
	require.NoError(t, err)
	require.Equal(t, sessions.Identity{}, creds.Identity)
	require.True(t, f.store.IsAuthorized())
}

type fakeVerifier struct {
	identity sessions.Identity
	err      error
	seen     []string
}

func (v *fakeVerifier) Verify(_ context.Context, raw string) (sessions.Identity, error) {
	v.seen = append(v.seen, raw)
	return v.identity, v.err
}

func TestCompleteAuthorization_Verifier(t *testing.T) {
	srv := newTokenServer(t, standardResponder(map[string]any{"id_token": "raw-id-token"}))

	t.Run("verified identity is stored", func(t *testing.T) {
		v := &fakeVerifier{identity: sessions.Identity{Subject: "sub-1", Email: "a@x.com"}}
		f := setupTestFixture(t, srv, auth.WithIdentityVerifier(v))

		creds, err := f.service.CompleteAuthorization(context.Background(), goodCode)
		require.NoError(t, err)
		require.Equal(t, []string{"raw-id-token"}, v.seen)
		require.Equal(t, "a@x.com", creds.Label())
	})

	t.Run("verification failure is an upstream failure", func(t *testing.T) {
		v := &fakeVerifier{err: stderrors.New("bad signature")}
		f := setupTestFixture(t, srv, auth.WithIdentityVerifier(v))

		_, err := f.service.CompleteAuthorization(context.Background(), goodCode)
		require.Error(t, err)
		require.True(t, errors.IsUpstream(err))
		require.False(t, f.store.IsAuthorized())
	})
}

func TestNewAuthorizationService_IssuerDiscovery(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		writeToken(w, map[string]any{
			"issuer":                                srv.URL,
			"authorization_endpoint":                srv.URL + "/authorize",
			"token_endpoint":                        srv.URL + "/token",
			"jwks_uri":                              srv.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	}))
	t.Cleanup(srv.Close)

	service, err := auth.NewAuthorizationService(context.Background(), testOAuthConfig{issuer: srv.URL}, sessions.NewStore(),
		auth.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	consentURL, err := url.Parse(service.BeginAuthorization())
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/authorize", consentURL.Scheme+"://"+consentURL.Host+consentURL.Path)
	require.ElementsMatch(t, []string{calendarScope, "openid", "email"}, service.Scopes())
}

// oidcProvider is a discovery document, JWKS and token endpoint on one server. The
// token endpoint answers each code with the id_token registered for it.
type oidcProvider struct {
	srv      *httptest.Server
	key      *rsa.PrivateKey
	idTokens map[string]string
}

const testKeyID = "test-key"

func newOIDCProvider(t *testing.T) *oidcProvider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p := &oidcProvider{key: key, idTokens: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, map[string]any{
			"issuer":                                p.srv.URL,
			"authorization_endpoint":                p.srv.URL + "/authorize",
			"token_endpoint":                        p.srv.URL + "/token",
			"jwks_uri":                              p.srv.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("GET /jwks", func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, map[string]any{"keys": []map[string]any{{
			"kty": "RSA",
			"kid": testKeyID,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		idToken, ok := p.idTokens[r.FormValue("code")]
		if !ok {
			writeInvalidGrant(w)
			return
		}
		writeToken(w, map[string]any{
			"access_token": "access-" + r.FormValue("code"),
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idToken,
		})
	})
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

func (p *oidcProvider) sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func (p *oidcProvider) claims(audience string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":   p.srv.URL,
		"sub":   "user-42",
		"aud":   audience,
		"email": "verified@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
}

func TestCompleteAuthorization_OIDCVerification(t *testing.T) {
	p := newOIDCProvider(t)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	p.idTokens["ok-valid"] = p.sign(t, p.key, p.claims(testClientID))
	p.idTokens["ok-wrong-audience"] = p.sign(t, p.key, p.claims("someone-else"))
	p.idTokens["ok-wrong-key"] = p.sign(t, otherKey, p.claims(testClientID))

	store := sessions.NewStore()
	service, err := auth.NewAuthorizationService(context.Background(), testOAuthConfig{issuer: p.srv.URL}, store,
		auth.WithHTTPClient(p.srv.Client()))
	require.NoError(t, err)

	for _, code := range []string{"ok-wrong-audience", "ok-wrong-key"} {
		_, err := service.CompleteAuthorization(context.Background(), code)
		require.Error(t, err, code)
		require.True(t, errors.IsUpstream(err), code)
		require.False(t, store.IsAuthorized(), code)
	}

	creds, err := service.CompleteAuthorization(context.Background(), "ok-valid")
	require.NoError(t, err)
	require.Equal(t, sessions.Identity{Subject: "user-42", Email: "verified@example.com"}, creds.Identity)
	require.Equal(t, creds.Identity, store.Current().MustGet().Identity)

	// A later bad token does not replace the verified session
	_, err = service.CompleteAuthorization(context.Background(), "ok-wrong-key")
	require.Error(t, err)
	require.Equal(t, "access-ok-valid", store.Current().MustGet().Token.AccessToken)
}

func TestNewAuthorizationService_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := auth.NewAuthorizationService(context.Background(), testOAuthConfig{issuer: srv.URL}, sessions.NewStore(),
		auth.WithHTTPClient(srv.Client()))
	require.Error(t, err)
}

// Two callbacks in flight: the one whose exchange resolves last wins, even though it
// was issued first.
func TestCompleteAuthorization_LastResolvedWins(t *testing.T) {
	release := make(chan struct{})
	srv := newTokenServer(t, func(w http.ResponseWriter, code string) {
		if code == "ok-slow" {
			<-release
		}
		standardResponder(nil)(w, code)
	})
	f := setupTestFixture(t, srv)

	var wg sync.WaitGroup
	var slowErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = f.service.CompleteAuthorization(context.Background(), "ok-slow")
	}()

	_, err := f.service.CompleteAuthorization(context.Background(), "ok-fast")
	require.NoError(t, err)
	require.Equal(t, "access-ok-fast", f.store.Current().MustGet().Token.AccessToken)

	close(release)
	wg.Wait()
	require.NoError(t, slowErr)
	require.Equal(t, "access-ok-slow", f.store.Current().MustGet().Token.AccessToken)
}
