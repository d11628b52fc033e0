package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/tobedoit/gCalendar-mcp/internal/instrumentation"
	"github.com/tobedoit/gCalendar-mcp/internal/logging"
)

// APIRecorder records Google API operation metrics.
type APIRecorder interface {
	RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration)
}

// Inserter creates events. *Client implements it.
type Inserter interface {
	InsertEvent(ctx context.Context, draft Draft) (*InsertedEvent, error)
}

// Client wraps the Google Calendar service
type Client struct {
	svc        *calendar.Service
	calendarID string
	metrics    APIRecorder
	logger     *slog.Logger
	svcOpts    []option.ClientOption
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every API call on m.
func WithMetrics(m APIRecorder) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithEndpoint overrides the API base URL.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.svcOpts = append(c.svcOpts, option.WithEndpoint(url)) }
}

// NewClient creates a Calendar client that sends requests through httpClient.
// httpClient is expected to authorize requests itself (see google.Credentials).
func NewClient(ctx context.Context, httpClient *http.Client, opts ...Option) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}

	c := &Client{
		calendarID: PrimaryCalendarID,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	svcOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, c.svcOpts...)
	svc, err := calendar.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	c.svc = svc
	c.logger = logging.WithService(c.logger, instrumentation.ServiceCalendar)

	return c, nil
}

// InsertEvent creates draft on the primary calendar. A single attempt is
// made; failures are returned as *RemoteCallError.
func (c *Client) InsertEvent(ctx context.Context, draft Draft) (*InsertedEvent, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate)
	defer span.End()

	start := time.Now()
	created, err := c.svc.Events.Insert(c.calendarID, toAPIEvent(draft)).Context(ctx).Do()
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}
	if c.metrics != nil {
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate, status, duration)
	}

	if err != nil {
		remoteErr := newRemoteCallError(instrumentation.OperationCreate, err)
		instrumentation.SetSpanError(span, remoteErr)
		c.logger.Error("event insert rejected",
			logging.Operation(instrumentation.OperationCreate),
			slog.Int("status_code", remoteErr.StatusCode),
			logging.Err(remoteErr))
		return nil, remoteErr
	}

	span.SetAttributes(attribute.String(instrumentation.SpanAttrResourceID, created.Id))
	instrumentation.SetSpanSuccess(span)
	c.logger.Debug("event inserted",
		logging.Operation(instrumentation.OperationCreate),
		slog.String("event_id", created.Id),
		slog.Duration(logging.KeyDuration, duration))

	return &InsertedEvent{
		ID:       created.Id,
		HTMLLink: created.HtmlLink,
	}, nil
}
