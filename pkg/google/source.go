// Package google implements the calendar.EventSource collaborator on top of
// the Google Calendar v3 API, so a widget can be backed directly by a Google
// calendar instead of embedder-supplied callbacks.
package google

import (
	"context"
	"fmt"
	"time"

	"github.com/kalendo/kalendo/internal/config"
	"github.com/kalendo/kalendo/pkg/calendar"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Google Calendar color ids closest to the widget palette.
var colorIds = map[calendar.Color]string{
	calendar.ColorBlue:   "9",
	calendar.ColorGreen:  "10",
	calendar.ColorYellow: "5",
	calendar.ColorPurple: "3",
	calendar.ColorRed:    "11",
}

var colorsById = func() map[string]calendar.Color {
	m := make(map[string]calendar.Color, len(colorIds))
	for c, id := range colorIds {
		m[id] = c
	}
	return m
}()

// OAuthConfig builds the oauth2 configuration an embedder runs its consent
// flow with before handing the resulting token source to NewSource.
func OAuthConfig(cfg config.Google, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientId,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{gcal.CalendarEventsScope},
		Endpoint:     googleOAuth.Endpoint,
	}
}

// Source is an EventSource over one Google calendar.
type Source struct {
	service    *gcal.Service
	calendarId string
	location   *time.Location
}

// NewSource builds the calendar service from an authenticated token source.
// Timed events are interpreted in the given location; nil means time.Local.
func NewSource(ctx context.Context, cfg config.Google, tokenSource oauth2.TokenSource, location *time.Location) (*Source, error) {
	service, err := gcal.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Calendar service: %w", err)
	}
	if location == nil {
		location = time.Local
	}
	calendarId := cfg.CalendarId
	if calendarId == "" {
		calendarId = "primary"
	}
	return &Source{service: service, calendarId: calendarId, location: location}, nil
}

func (s *Source) CreateEvent(ctx context.Context, event calendar.Event) (*calendar.Event, error) {
	log.Debugf("inserting event %q into calendar %s", event.Title, s.calendarId)
	gev, err := s.toGoogleEvent(event)
	if err != nil {
		return nil, err
	}
	result, err := s.service.Events.Insert(s.calendarId, gev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to insert event in Google Calendar: %w", err)
	}
	event.ID = result.Id
	return &event, nil
}

func (s *Source) UpdateEvent(ctx context.Context, event calendar.Event) (*calendar.Event, error) {
	log.Debugf("updating event %s in calendar %s", event.ID, s.calendarId)
	gev, err := s.toGoogleEvent(event)
	if err != nil {
		return nil, err
	}
	result, err := s.service.Events.Update(s.calendarId, event.ID, gev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to update event in Google Calendar: %w", err)
	}
	event.ID = result.Id
	return &event, nil
}

func (s *Source) DeleteEvent(ctx context.Context, id string) error {
	log.Debugf("deleting event %s from calendar %s", id, s.calendarId)
	if err := s.service.Events.Delete(s.calendarId, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to delete event from Google Calendar: %w", err)
	}
	return nil
}

func (s *Source) FetchRange(ctx context.Context, from time.Time, to time.Time) ([]calendar.Event, error) {
	googleEvents, err := s.service.Events.List(s.calendarId).
		TimeMin(from.In(s.location).Format(time.RFC3339)).
		TimeMax(to.In(s.location).AddDate(0, 0, 1).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from Google Calendar: %w", err)
	}

	events := make([]calendar.Event, 0, len(googleEvents.Items))
	for _, item := range googleEvents.Items {
		event, err := s.fromGoogleEvent(item)
		if err != nil {
			log.Warnf("skipping unmappable calendar event %s: %v", item.Id, err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *Source) toGoogleEvent(event calendar.Event) (*gcal.Event, error) {
	gev := &gcal.Event{
		Summary:     event.Title,
		Description: event.Description,
		ColorId:     colorIds[event.Color],
	}
	if event.IsRecurring {
		// Recurrence is descriptive only; round-trip the pattern without
		// generating RRULE occurrences.
		gev.ExtendedProperties = &gcal.EventExtendedProperties{
			Private: map[string]string{"recurrencePattern": string(event.RecurrencePattern)},
		}
	}
	if event.IsAllDay {
		end, err := calendar.ParseDate(event.EndDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end date: %w", err)
		}
		gev.Start = &gcal.EventDateTime{Date: event.StartDate}
		// Google all-day end dates are exclusive.
		gev.End = &gcal.EventDateTime{Date: end.AddDate(0, 0, 1).Format(calendar.DateLayout)}
		return gev, nil
	}

	start, err := s.combine(event.StartDate, event.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := s.combine(event.EndDate, event.EndTime)
	if err != nil {
		return nil, err
	}
	gev.Start = &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)}
	gev.End = &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)}
	return gev, nil
}

func (s *Source) fromGoogleEvent(item *gcal.Event) (calendar.Event, error) {
	event := calendar.Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Color:       calendar.ColorBlue,
	}
	if c, ok := colorsById[item.ColorId]; ok {
		event.Color = c
	}
	if item.ExtendedProperties != nil {
		if pattern, ok := item.ExtendedProperties.Private["recurrencePattern"]; ok && pattern != "" {
			event.IsRecurring = true
			event.RecurrencePattern = calendar.RecurrencePattern(pattern)
		}
	}

	if item.Start == nil || item.End == nil {
		return calendar.Event{}, fmt.Errorf("event %s has no start or end", item.Id)
	}
	if item.Start.Date != "" {
		end, err := calendar.ParseDate(item.End.Date)
		if err != nil {
			return calendar.Event{}, fmt.Errorf("failed to parse all-day end date: %w", err)
		}
		event.IsAllDay = true
		event.StartDate = item.Start.Date
		event.EndDate = end.AddDate(0, 0, -1).Format(calendar.DateLayout)
		event.StartTime = "00:00"
		event.EndTime = "23:59"
		return event, nil
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("failed to parse start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("failed to parse end time: %w", err)
	}
	start = start.In(s.location)
	end = end.In(s.location)
	event.StartDate = start.Format(calendar.DateLayout)
	event.EndDate = end.Format(calendar.DateLayout)
	event.StartTime = start.Format(calendar.ClockLayout)
	event.EndTime = end.Format(calendar.ClockLayout)
	return event, nil
}

func (s *Source) combine(date string, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(calendar.DateLayout+" "+calendar.ClockLayout, date+" "+clock, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s %s: %w", date, clock, err)
	}
	return t, nil
}
