package calendar

import (
	calendar "google.golang.org/api/calendar/v3"
)

// PrimaryCalendarID addresses the authenticated user's primary calendar.
const PrimaryCalendarID = "primary"

// Reminder methods accepted by the Calendar API.
const (
	ReminderMethodPopup = "popup"
	ReminderMethodEmail = "email"
)

// DefaultReminderMinutes is the lead time of the default popup reminder.
const DefaultReminderMinutes = 10

// Draft is an event ready to be inserted.
type Draft struct {
	Summary     string         `json:"summary"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Start       EventTime      `json:"start"`
	End         EventTime      `json:"end"`
	Attendees   []Attendee     `json:"attendees,omitempty"`
	Reminders   ReminderPolicy `json:"reminders"`
}

// EventTime is an ISO-8601 timestamp annotated with a time zone.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Attendee is an invited participant.
type Attendee struct {
	Email string `json:"email"`
}

// ReminderPolicy is either the calendar's default reminders or an explicit
// list of overrides.
type ReminderPolicy struct {
	UseDefault bool               `json:"useDefault" mapstructure:"useDefault"`
	Overrides  []ReminderOverride `json:"overrides,omitempty" mapstructure:"overrides"`
}

// ReminderOverride fires a reminder Minutes before the event starts.
type ReminderOverride struct {
	Method  string `json:"method" mapstructure:"method"`
	Minutes int64  `json:"minutes" mapstructure:"minutes"`
}

// DefaultReminderPolicy is applied when the caller states no preference:
// a single popup ten minutes before start.
func DefaultReminderPolicy() ReminderPolicy {
	return ReminderPolicy{
		UseDefault: false,
		Overrides: []ReminderOverride{
			{Method: ReminderMethodPopup, Minutes: DefaultReminderMinutes},
		},
	}
}

// InsertedEvent identifies an event created by InsertEvent.
type InsertedEvent struct {
	ID       string
	HTMLLink string
}

// toAPIEvent converts a Draft to the Calendar API payload.
func toAPIEvent(d Draft) *calendar.Event {
	event := &calendar.Event{
		Summary:     d.Summary,
		Description: d.Description,
		Location:    d.Location,
		Start: &calendar.EventDateTime{
			DateTime: d.Start.DateTime,
			TimeZone: d.Start.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: d.End.DateTime,
			TimeZone: d.End.TimeZone,
		},
	}

	for _, a := range d.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: a.Email})
	}

	// Zero values are dropped by the generated encoder unless forced.
	reminders := &calendar.EventReminders{
		UseDefault:      d.Reminders.UseDefault,
		ForceSendFields: []string{"UseDefault"},
	}
	for _, o := range d.Reminders.Overrides {
		reminders.Overrides = append(reminders.Overrides, &calendar.EventReminder{
			Method:          o.Method,
			Minutes:         o.Minutes,
			ForceSendFields: []string{"Minutes"},
		})
	}
	event.Reminders = reminders

	return event
}
