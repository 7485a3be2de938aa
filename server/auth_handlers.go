package server

import (
	"net/http"

	"github.com/jrsteele09/go-calendar-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

const loggedInText = "Successfully logged in"

// IndexHandler sends the browser to the provider consent page.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.services.Auth.BeginAuthorization(), http.StatusFound)
	}
}

// OAuthCallbackHandler exchanges the authorization code and stores the resulting
// credentials. The code is not validated locally, the provider rejects a bad one.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if providerErr := query.Get("error"); providerErr != "" {
			err := errors.Wrapf(errors.ErrAuthorizationDenied, "%s: %s", providerErr, query.Get("error_description"))
			writeFailure(w, "auth.Callback", err)
			return
		}

		creds, err := s.services.Auth.CompleteAuthorization(r.Context(), query.Get("code"))
		if err != nil {
			writeFailure(w, "auth.Callback", err)
			return
		}

		log.Info().Str("identity", creds.Label()).Msg("Calendar session updated")
		writeText(w, http.StatusOK, loggedInText)
	}
}
