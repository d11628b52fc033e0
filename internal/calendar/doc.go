// Package calendar creates events through the Google Calendar API.
//
// A Draft is the not-yet-submitted form of an event. It carries the fields
// the create_event tool exposes: summary, description, location, start and
// end (each tagged with the deployment's time zone), attendees and the
// reminder policy. Client.InsertEvent submits a Draft to the authenticated
// user's primary calendar in a single attempt and returns the new event's
// id and link.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, httpClient, calendar.WithMetrics(metrics))
//	if err != nil {
//	    return err
//	}
//	event, err := client.InsertEvent(ctx, draft)
//	if err != nil {
//	    var remoteErr *calendar.RemoteCallError
//	    errors.As(err, &remoteErr)
//	}
//	fmt.Println(event.HTMLLink)
package calendar
