package server

// Route path constants
const (
	// OAuth flow
	RouteIndex    = "/"
	RouteRedirect = "/redirect"

	// Calendar proxy
	RouteCalendars   = "/calendars"
	RouteEvents      = "/events"
	RouteCreateEvent = "/create-event"

	// Record store
	RouteUsers    = "/usuarios"
	RouteUserByID = "/usuarios/{id}"

	RouteHealth = "/health"
)
