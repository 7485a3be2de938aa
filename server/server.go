package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-calendar-gateway/calendar"
	"github.com/jrsteele09/go-calendar-gateway/internal/config"
	"github.com/jrsteele09/go-calendar-gateway/sessions"
	"github.com/jrsteele09/go-calendar-gateway/users"
	"github.com/rs/zerolog/log"
	gcal "google.golang.org/api/calendar/v3"
)

// Authorizer runs the OAuth2 authorization-code flow.
type Authorizer interface {
	BeginAuthorization() string
	CompleteAuthorization(ctx context.Context, code string) (sessions.Credentials, error)
}

// CalendarGateway proxies calendar operations for the authorised identity.
type CalendarGateway interface {
	ListCalendars(ctx context.Context) ([]*gcal.CalendarListEntry, error)
	ListUpcomingEvents(ctx context.Context, calendarID string) ([]*gcal.Event, error)
	CreateEvent(ctx context.Context, req calendar.EventRequest) (*gcal.Event, error)
}

// Services holds everything the handlers delegate to.
type Services struct {
	Auth     Authorizer
	Sessions sessions.Reader
	Calendar CalendarGateway
	Users    users.UserRepo
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	preflight http.HandlerFunc
	config    config.Config
	services  Services
}

func New(config config.Config, services Services) *Server {
	s := &Server{
		env:      config.GetEnv(),
		mux:      http.NewServeMux(),
		config:   config,
		services: services,
	}

	s.initRoutes()
	s.preflight = s.PreflightHandler()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions && s.hasRoute(r) {
		s.preflight(w, r)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// hasRoute reports whether any registered pattern serves the request path.
func (s *Server) hasRoute(r *http.Request) bool {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		candidate := *r
		candidate.Method = method
		if _, pattern := s.mux.Handler(&candidate); pattern != "" {
			return true
		}
	}
	return false
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

func colourMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
