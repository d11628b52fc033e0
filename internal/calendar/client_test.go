package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiCall struct {
	service, operation, status string
}

type fakeAPIRecorder struct {
	calls []apiCall
}

func (r *fakeAPIRecorder) RecordGoogleAPIOperation(_ context.Context, service, operation, status string, _ time.Duration) {
	r.calls = append(r.calls, apiCall{service, operation, status})
}

// newCalendarServer fakes the events.insert endpoint and captures the
// decoded request payload.
func newCalendarServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"), "unexpected path %s", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		if captured != nil {
			assert.NoError(t, json.Unmarshal(raw, captured))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sampleDraft() Draft {
	return Draft{
		Summary:   "Sync",
		Start:     EventTime{DateTime: "2025-01-01T10:00:00+09:00", TimeZone: "Asia/Seoul"},
		End:       EventTime{DateTime: "2025-01-01T10:30:00+09:00", TimeZone: "Asia/Seoul"},
		Reminders: DefaultReminderPolicy(),
	}
}

func TestNewClient_NilHTTPClient(t *testing.T) {
	_, err := NewClient(context.Background(), nil)
	assert.Error(t, err)
}

func TestInsertEvent_Success(t *testing.T) {
	var payload map[string]any
	srv := newCalendarServer(t, http.StatusOK,
		`{"id":"evt123","htmlLink":"https://www.google.com/calendar/event?eid=evt123"}`, &payload)
	recorder := &fakeAPIRecorder{}

	client, err := NewClient(context.Background(), srv.Client(), WithEndpoint(srv.URL+"/"), WithMetrics(recorder))
	require.NoError(t, err)

	event, err := client.InsertEvent(context.Background(), sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, "evt123", event.ID)
	assert.Equal(t, "https://www.google.com/calendar/event?eid=evt123", event.HTMLLink)

	assert.Equal(t, "Sync", payload["summary"])
	assert.NotContains(t, payload, "location")
	assert.NotContains(t, payload, "attendees")

	start := payload["start"].(map[string]any)
	assert.Equal(t, "2025-01-01T10:00:00+09:00", start["dateTime"])
	assert.Equal(t, "Asia/Seoul", start["timeZone"])

	reminders := payload["reminders"].(map[string]any)
	assert.Equal(t, false, reminders["useDefault"])
	overrides := reminders["overrides"].([]any)
	require.Len(t, overrides, 1)
	assert.Equal(t, map[string]any{"method": "popup", "minutes": float64(10)}, overrides[0])

	assert.Equal(t, []apiCall{{"calendar", "create", "success"}}, recorder.calls)
}

func TestInsertEvent_SendsAttendeesInOrder(t *testing.T) {
	var payload map[string]any
	srv := newCalendarServer(t, http.StatusOK, `{"id":"e","htmlLink":"https://example.test/e"}`, &payload)

	client, err := NewClient(context.Background(), srv.Client(), WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	draft := sampleDraft()
	draft.Location = "Room 1"
	draft.Attendees = []Attendee{{Email: "b@example.com"}, {Email: "a@example.com"}}
	draft.Reminders = ReminderPolicy{UseDefault: true}

	_, err = client.InsertEvent(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, "Room 1", payload["location"])
	assert.Equal(t, []any{
		map[string]any{"email": "b@example.com"},
		map[string]any{"email": "a@example.com"},
	}, payload["attendees"])
	assert.Equal(t, map[string]any{"useDefault": true}, payload["reminders"])
}

func TestInsertEvent_RemoteRejection(t *testing.T) {
	srv := newCalendarServer(t, http.StatusForbidden,
		`{"error":{"code":403,"message":"Rate Limit Exceeded","errors":[{"reason":"rateLimitExceeded"}]}}`, nil)
	recorder := &fakeAPIRecorder{}

	client, err := NewClient(context.Background(), srv.Client(), WithEndpoint(srv.URL+"/"), WithMetrics(recorder))
	require.NoError(t, err)

	_, err = client.InsertEvent(context.Background(), sampleDraft())
	require.Error(t, err)

	var remoteErr *RemoteCallError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusForbidden, remoteErr.StatusCode)
	assert.Equal(t, "Rate Limit Exceeded", remoteErr.Message)
	assert.Equal(t, "create", remoteErr.Operation)
	assert.Contains(t, err.Error(), "Rate Limit Exceeded")

	assert.Equal(t, []apiCall{{"calendar", "create", "error"}}, recorder.calls)
}

func TestInsertEvent_ConnectivityLoss(t *testing.T) {
	srv := newCalendarServer(t, http.StatusOK, `{}`, nil)
	url := srv.URL
	srv.Close()

	client, err := NewClient(context.Background(), http.DefaultClient, WithEndpoint(url+"/"))
	require.NoError(t, err)

	_, err = client.InsertEvent(context.Background(), sampleDraft())
	var remoteErr *RemoteCallError
	require.True(t, errors.As(err, &remoteErr))
	assert.Zero(t, remoteErr.StatusCode)
	assert.NotEmpty(t, remoteErr.Message)
	assert.NotNil(t, errors.Unwrap(remoteErr))
}

func TestDefaultReminderPolicy(t *testing.T) {
	policy := DefaultReminderPolicy()
	assert.False(t, policy.UseDefault)
	assert.Equal(t, []ReminderOverride{{Method: "popup", Minutes: 10}}, policy.Overrides)

	// Each call returns a fresh slice.
	policy.Overrides[0].Minutes = 99
	assert.Equal(t, int64(10), DefaultReminderPolicy().Overrides[0].Minutes)
}
