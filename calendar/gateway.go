package calendar

import (
	"context"
	"fmt"
	"slices"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-calendar-gateway/internal/config"
	"github.com/jrsteele09/go-calendar-gateway/internal/errors"
	"github.com/jrsteele09/go-calendar-gateway/sessions"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// ServiceFactory builds a Google Calendar service authorised with token.
type ServiceFactory func(ctx context.Context, token *oauth2.Token) (*gcal.Service, error)

// GoogleServiceFactory authorises every request with the token as stored. The token is
// wrapped in a static source so it is never refreshed.
func GoogleServiceFactory(opts ...option.ClientOption) ServiceFactory {
	return func(ctx context.Context, token *oauth2.Token) (*gcal.Service, error) {
		client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
		return gcal.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	}
}

// Gateway proxies calendar operations to Google using the session credentials.
type Gateway struct {
	sessions   sessions.Reader
	newService ServiceFactory
	config     config.CalendarConfig
	newID      func() string
	nowTime    func() time.Time
}

// GatewayOption defines a function type to modify the Gateway instance.
type GatewayOption func(*Gateway)

// WithServiceFactory replaces how the Google service is built (primarily for testing)
func WithServiceFactory(f ServiceFactory) GatewayOption {
	return func(g *Gateway) {
		g.newService = f
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.nowTime = nowFunc
	}
}

// WithRequestIDGenerator sets how conference request ids are made (primarily for testing)
func WithRequestIDGenerator(newID func() string) GatewayOption {
	return func(g *Gateway) {
		g.newID = newID
	}
}

func NewGateway(store sessions.Reader, cfg config.CalendarConfig, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		sessions:   store,
		newService: GoogleServiceFactory(),
		config:     cfg,
		newID:      uuid.NewString,
		nowTime:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// service returns a Google service for the current credentials, or ErrNotAuthenticated
// when no login has completed yet. No outbound call is made in that case.
func (g *Gateway) service(ctx context.Context, op string) (*gcal.Service, error) {
	creds, ok := g.sessions.Current().Get()
	if !ok {
		return nil, errors.ErrNotAuthenticated
	}
	svc, err := g.newService(ctx, creds.Token)
	if err != nil {
		return nil, errors.Upstream(op, fmt.Errorf("failed to create calendar service: %w", err))
	}
	return svc, nil
}

// ListCalendars returns the calendar list of the authorised identity.
func (g *Gateway) ListCalendars(ctx context.Context) ([]*gcal.CalendarListEntry, error) {
	const op = "calendar.ListCalendars"
	svc, err := g.service(ctx, op)
	if err != nil {
		return nil, err
	}

	list, err := svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, errors.Upstream(op, fmt.Errorf("failed to list calendars: %w", err))
	}
	return nonNil(list.Items), nil
}

// ListUpcomingEvents returns up to GetMaxUpcomingEvents events starting from now, with
// recurring events expanded and ordered by start time. An empty calendarID means the
// default calendar.
func (g *Gateway) ListUpcomingEvents(ctx context.Context, calendarID string) ([]*gcal.Event, error) {
	const op = "calendar.ListUpcomingEvents"
	if calendarID == "" {
		calendarID = g.config.GetDefaultCalendarID()
	}
	svc, err := g.service(ctx, op)
	if err != nil {
		return nil, err
	}

	limit := g.config.GetMaxUpcomingEvents()
	events, err := svc.Events.List(calendarID).
		TimeMin(g.nowTime().Format(time.RFC3339)).
		MaxResults(limit).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Upstream(op, fmt.Errorf("failed to list events: %w", err))
	}

	items := nonNil(events.Items)
	slices.SortStableFunc(items, func(a, b *gcal.Event) int {
		return g.startTime(a).Compare(g.startTime(b))
	})
	if int64(len(items)) > limit {
		items = items[:limit]
	}
	return items, nil
}

// CreateEvent inserts an event with a generated video conference into the default
// calendar and returns the provider's representation of it.
func (g *Gateway) CreateEvent(ctx context.Context, req EventRequest) (*gcal.Event, error) {
	const op = "calendar.CreateEvent"
	svc, err := g.service(ctx, op)
	if err != nil {
		return nil, err
	}

	event := g.NewEvent(req)
	created, err := svc.Events.Insert(g.config.GetDefaultCalendarID(), event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Upstream(op, fmt.Errorf("failed to create event: %w", err))
	}
	return created, nil
}

// startTime is the instant an event starts. All-day events start at midnight in their own
// time zone, or the configured event time zone when they carry none. Events without a
// readable start sort first.
func (g *Gateway) startTime(e *gcal.Event) time.Time {
	if e.Start == nil {
		return time.Time{}
	}
	if e.Start.DateTime != "" {
		t, err := time.Parse(time.RFC3339, e.Start.DateTime)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	t, err := time.ParseInLocation(time.DateOnly, e.Start.Date, g.location(e.Start.TimeZone))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (g *Gateway) location(name string) *time.Location {
	for _, candidate := range []string{name, g.config.GetEventTimeZone()} {
		if candidate == "" {
			continue
		}
		if loc, err := time.LoadLocation(candidate); err == nil {
			return loc
		}
	}
	return time.UTC
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
