package calendar

import gcal "google.golang.org/api/calendar/v3"

// EventRequest is the inbound body of a create-event call. Date-times are passed to the
// provider as given.
type EventRequest struct {
	Summary       string                `json:"summary"`
	Description   string                `json:"description"`
	StartDateTime string                `json:"startDateTime"`
	EndDateTime   string                `json:"endDateTime"`
	Attendees     []*gcal.EventAttendee `json:"attendees"`
}

// NewEvent builds the outbound event: both ends pinned to the configured time zone and
// a single conference create request with a fresh request id.
func (g *Gateway) NewEvent(req EventRequest) *gcal.Event {
	tz := g.config.GetEventTimeZone()
	return &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &gcal.EventDateTime{
			DateTime: req.StartDateTime,
			TimeZone: tz,
		},
		End: &gcal.EventDateTime{
			DateTime: req.EndDateTime,
			TimeZone: tz,
		},
		Attendees: req.Attendees,
		ConferenceData: &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId: g.newID(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{
					Type: g.config.GetConferenceSolutionType(),
				},
			},
		},
	}
}
