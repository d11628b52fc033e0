package calendar_tools

import (
	"github.com/tobedoit/gCalendar-mcp/internal/calendar"
	"github.com/tobedoit/gCalendar-mcp/internal/tools"
)

// BuildDraft turns decoded arguments into an event draft. Start and end are
// tagged with timeZone and otherwise passed through untouched. Without a
// reminder preference the default popup reminder is used.
func BuildDraft(args EventArgs, timeZone string) (calendar.Draft, error) {
	var missing []tools.FieldError
	for _, f := range []struct{ name, value string }{
		{argSummary, args.Summary},
		{argStartTime, args.StartTime},
		{argEndTime, args.EndTime},
	} {
		if f.value == "" {
			missing = append(missing, tools.FieldError{Field: f.name, Message: "is required"})
		}
	}
	if len(missing) > 0 {
		return calendar.Draft{}, &tools.ArgumentError{Fields: missing}
	}

	draft := calendar.Draft{
		Summary:     args.Summary,
		Description: args.Description,
		Location:    args.Location,
		Start:       calendar.EventTime{DateTime: args.StartTime, TimeZone: timeZone},
		End:         calendar.EventTime{DateTime: args.EndTime, TimeZone: timeZone},
	}

	for _, email := range args.Attendees {
		draft.Attendees = append(draft.Attendees, calendar.Attendee{Email: email})
	}

	if args.Reminders != nil {
		draft.Reminders = *args.Reminders
	} else {
		draft.Reminders = calendar.DefaultReminderPolicy()
	}

	return draft, nil
}
