// Package calendar creates the confirmed interview event on Google
// Calendar, attaching a Meet conference and inviting both parties.
package calendar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/googleauth"
	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

// EventInput describes the interview to put on the calendar.
type EventInput struct {
	InterviewID string
	Candidate   negotiation.Party
	Interviewer negotiation.Party
	Slot        negotiation.Slot
}

// CreatedEvent is the calendar's answer: the references the store and
// the confirmation email need.
type CreatedEvent struct {
	EventID  string `json:"eventId"`
	MeetLink string `json:"meetLink"`
	HTMLLink string `json:"htmlLink"`
}

// Scheduler creates interview events.
type Scheduler interface {
	CreateEvent(ctx context.Context, in EventInput) (CreatedEvent, error)
}

// GoogleScheduler is the Calendar API implementation.
type GoogleScheduler struct {
	svc        *calendar.Service
	calendarID string
	timezone   string
}

// NewGoogleScheduler builds a Scheduler from the configured OAuth files.
func NewGoogleScheduler(ctx context.Context, cfg config.GoogleConfig) (*GoogleScheduler, error) {
	httpClient, err := googleauth.Client(ctx, cfg, calendar.CalendarEventsScope)
	if err != nil {
		return nil, err
	}
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &GoogleScheduler{svc: svc, calendarID: cfg.CalendarID, timezone: cfg.DisplayTimezone}, nil
}

// CreateEvent inserts the event with a Meet conference request. Slots
// carry no offset; the configured display timezone localizes them.
func (g *GoogleScheduler) CreateEvent(ctx context.Context, in EventInput) (CreatedEvent, error) {
	event := &calendar.Event{
		Summary: fmt.Sprintf("Interview: %s with %s", in.Candidate.Name, in.Interviewer.Name),
		Description: fmt.Sprintf("Interview between candidate %s and interviewer %s.\nInterviewID: %s",
			in.Candidate.Name, in.Interviewer.Name, in.InterviewID),
		Start: &calendar.EventDateTime{
			DateTime: fmt.Sprintf("%sT%s:00", in.Slot.Date, in.Slot.StartTime),
			TimeZone: g.timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: fmt.Sprintf("%sT%s:00", in.Slot.Date, in.Slot.EndTime),
			TimeZone: g.timezone,
		},
		Attendees: []*calendar.EventAttendee{
			{Email: in.Candidate.Email, DisplayName: in.Candidate.Name},
			{Email: in.Interviewer.Email, DisplayName: in.Interviewer.Name},
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 15},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}

	created, err := g.svc.Events.Insert(g.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return CreatedEvent{}, fmt.Errorf("insert event for %s: %w", in.InterviewID, err)
	}

	out := CreatedEvent{EventID: created.Id, HTMLLink: created.HtmlLink}
	out.MeetLink = created.HangoutLink
	if out.MeetLink == "" && created.ConferenceData != nil {
		for _, ep := range created.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				out.MeetLink = ep.Uri
				break
			}
		}
	}
	return out, nil
}
