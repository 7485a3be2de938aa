package server

import "net/http"

func (s *Server) initRoutes() {
	// OAUTH
	s.RegisterRouteHandler("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRedirect, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...))

	// CALENDAR (answer "Not authenticated" until a login completes)
	s.RegisterRouteHandler("GET "+RouteCalendars, ChainMiddleware(s.ListCalendarsHandler(), s.APIMiddleware(s.RequireCalendarSession)...))
	s.RegisterRouteHandler("GET "+RouteEvents, ChainMiddleware(s.ListEventsHandler(), s.APIMiddleware(s.RequireCalendarSession)...))
	s.RegisterRouteHandler("POST "+RouteCreateEvent, ChainMiddleware(s.CreateEventHandler(), s.APIMiddleware(s.RequireCalendarSession)...))

	// USERS
	s.RegisterRouteHandler("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteUsers, ChainMiddleware(s.CreateUserHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteUserByID, ChainMiddleware(s.UpdateUserHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteUserByID, ChainMiddleware(s.DeleteUserHandler(), s.APIMiddleware()...))

	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PreflightHandler answers OPTIONS for registered paths with 204, after the CORS
// middleware has added the allow headers.
func (s *Server) PreflightHandler() http.HandlerFunc {
	return ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.APIMiddleware()...)
}
