package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-calendar-gateway/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// IdentityVerifier checks a raw id_token and returns who it identifies.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (sessions.Identity, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier verifies id_tokens against the provider's published keys.
func NewOIDCVerifier(provider *oidc.Provider, clientID string) IdentityVerifier {
	return oidcVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}
}

func (v oidcVerifier) Verify(ctx context.Context, rawIDToken string) (sessions.Identity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return sessions.Identity{}, fmt.Errorf("id token verification failed: %w", err)
	}
	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return sessions.Identity{}, fmt.Errorf("failed to extract claims: %w", err)
	}
	return sessions.Identity{Subject: claims.Sub, Email: claims.Email}, nil
}

// identity reads the id_token of a token response, if there is one. With a verifier the
// token must verify. Without one the claims are only decoded to label the session, and a
// token that cannot be decoded is ignored.
func (as *AuthorizationService) identity(ctx context.Context, token *oauth2.Token) (sessions.Identity, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return sessions.Identity{}, nil
	}
	if as.verifier != nil {
		return as.verifier.Verify(ctx, rawIDToken)
	}

	identity, err := unverifiedIdentity(rawIDToken)
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring undecodable id_token")
		return sessions.Identity{}, nil
	}
	return identity, nil
}

func unverifiedIdentity(rawIDToken string) (sessions.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		return sessions.Identity{}, fmt.Errorf("parse id_token: %w", err)
	}
	sub, _ := claims.GetSubject()
	email, _ := claims["email"].(string)
	return sessions.Identity{Subject: sub, Email: email}, nil
}
