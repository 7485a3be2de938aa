package server

import "net/http"

// RequireCalendarSession answers "Not authenticated" until a credential set has been
// stored. This is a normal response, not an error, and nothing is sent upstream.
func (s *Server) RequireCalendarSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.services.Sessions.IsAuthorized() {
			writeText(w, http.StatusOK, notAuthenticatedText)
			return
		}
		next(w, r)
	}
}
