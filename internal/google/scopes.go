package google

import (
	calendar "google.golang.org/api/calendar/v3"
)

// CalendarScopes are the OAuth scopes requested when refreshing tokens.
// The refresh token must have been granted at least these scopes.
var CalendarScopes = []string{
	calendar.CalendarEventsScope,
}
