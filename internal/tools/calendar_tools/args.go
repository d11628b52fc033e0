package calendar_tools

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/tobedoit/gCalendar-mcp/internal/calendar"
	"github.com/tobedoit/gCalendar-mcp/internal/tools"
)

// Argument names of the create_event tool.
const (
	argSummary     = "summary"
	argDescription = "description"
	argLocation    = "location"
	argStartTime   = "start_time"
	argEndTime     = "end_time"
	argAttendees   = "attendees"
	argReminders   = "reminders"
)

// EventArgs is the typed form of a create_event argument bag.
type EventArgs struct {
	Summary     string                   `mapstructure:"summary"`
	Description string                   `mapstructure:"description"`
	Location    string                   `mapstructure:"location"`
	StartTime   string                   `mapstructure:"start_time"`
	EndTime     string                   `mapstructure:"end_time"`
	Attendees   []string                 `mapstructure:"attendees"`
	Reminders   *calendar.ReminderPolicy `mapstructure:"reminders"`
}

// DecodeEventArgs converts an argument bag into EventArgs. Values of the
// wrong type are reported as field errors instead of being coerced.
func DecodeEventArgs(args map[string]any) tools.Validation[EventArgs] {
	var out EventArgs
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &out,
		DecodeHook: mapstructure.DecodeHookFuncType(wholeNumberHook),
	})
	if err != nil {
		return tools.Invalid[EventArgs](tools.FieldError{Message: err.Error()})
	}
	if err := decoder.Decode(args); err != nil {
		return tools.Invalid[EventArgs](decodeErrors(err)...)
	}
	return tools.Valid(out)
}

// wholeNumberHook refuses to truncate fractional JSON numbers into integer
// fields. The input schema declares reminder minutes as integers, so this
// only fires for callers that skip schema validation.
func wholeNumberHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float64 && from.Kind() != reflect.Float32 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("expected a whole number, got %v", f)
	}
	return data, nil
}

func decodeErrors(err error) []tools.FieldError {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var fields []tools.FieldError
		for _, e := range joined.Unwrap() {
			fields = append(fields, decodeErrors(e)...)
		}
		if len(fields) > 0 {
			return fields
		}
	}
	return []tools.FieldError{{Message: err.Error()}}
}
