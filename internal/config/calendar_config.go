package config

type CalendarConfig interface {
	GetEventTimeZone() string
	GetMaxUpcomingEvents() int64
	GetDefaultCalendarID() string
	GetConferenceSolutionType() string
}

type Calendar struct{}

var _ CalendarConfig = Calendar{}

func (Calendar) GetEventTimeZone() string {
	return "America/Sao_Paulo"
}

func (Calendar) GetMaxUpcomingEvents() int64 {
	return 15
}

func (Calendar) GetDefaultCalendarID() string {
	return "primary"
}

func (Calendar) GetConferenceSolutionType() string {
	return "hangoutsMeet"
}
