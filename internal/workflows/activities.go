package workflows

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/calendar"
	"github.com/fyrsmithlabs/interviewd/internal/email"
	"github.com/fyrsmithlabs/interviewd/internal/logging"
	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
	"github.com/fyrsmithlabs/interviewd/internal/store"
)

// Activities holds the side-effect dependencies the scheduling
// workflow drives. One instance is registered per worker.
type Activities struct {
	Sender   email.Sender
	Calendar calendar.Scheduler
	Store    *store.Store
	// FormBaseURL is the public base of the slot-form server, embedded
	// in interviewer request emails.
	FormBaseURL string
	Log         *logging.Logger
}

// Activity input/output types. All fields must survive Temporal's
// JSON round trip.

type SendInterviewerRequestInput struct {
	InterviewID  string            `json:"interviewId"`
	Interviewer  negotiation.Party `json:"interviewer"`
	Candidate    negotiation.Party `json:"candidate"`
	ProposedDate string            `json:"proposedDate"`
}

type SendCandidateSlotsInput struct {
	InterviewID string             `json:"interviewId"`
	Candidate   negotiation.Party  `json:"candidate"`
	Interviewer negotiation.Party  `json:"interviewer"`
	Slots       []negotiation.Slot `json:"slots"`
}

type SendSlotConfirmationInput struct {
	InterviewID string            `json:"interviewId"`
	Interviewer negotiation.Party `json:"interviewer"`
	Candidate   negotiation.Party `json:"candidate"`
	Slot        negotiation.Slot  `json:"slot"`
}

type SendSlotRejectedInput struct {
	InterviewID string            `json:"interviewId"`
	Candidate   negotiation.Party `json:"candidate"`
	Interviewer negotiation.Party `json:"interviewer"`
	Slot        negotiation.Slot  `json:"slot"`
}

type SendConfirmationInput struct {
	InterviewID string            `json:"interviewId"`
	Candidate   negotiation.Party `json:"candidate"`
	Interviewer negotiation.Party `json:"interviewer"`
	Slot        negotiation.Slot  `json:"slot"`
	MeetLink    string            `json:"meetLink,omitempty"`
}

type CreateCalendarEventInput struct {
	InterviewID string            `json:"interviewId"`
	Candidate   negotiation.Party `json:"candidate"`
	Interviewer negotiation.Party `json:"interviewer"`
	Slot        negotiation.Slot  `json:"slot"`
}

type CalendarEventResult struct {
	EventID  string `json:"eventId"`
	MeetLink string `json:"meetLink"`
	HTMLLink string `json:"htmlLink"`
}

type AddActiveInterviewInput struct {
	InterviewID  string             `json:"interviewId"`
	Candidate    negotiation.Party  `json:"candidate"`
	Interviewer  negotiation.Party  `json:"interviewer"`
	Recruiter    negotiation.Party  `json:"recruiter"`
	ProposedDate string             `json:"proposedDate"`
	Status       negotiation.Status `json:"status"`
}

type UpdateStatusInput struct {
	InterviewID string             `json:"interviewId"`
	Status      negotiation.Status `json:"status"`
}

// SendInterviewerRequest emails the interviewer a link to the slot
// submission form for the proposed date.
func (a *Activities) SendInterviewerRequest(ctx context.Context, in SendInterviewerRequestInput) error {
	ctx = logging.WithInterviewID(ctx, in.InterviewID)
	formURL := a.slotFormURL(in.InterviewID, in.Interviewer.Name, in.ProposedDate)
	msg := email.InterviewerRequest(in.Interviewer, in.Candidate, in.ProposedDate, in.InterviewID, formURL)
	return a.Sender.Send(ctx, msg)
}

// SendCandidateSlots emails the offered windows to the candidate.
func (a *Activities) SendCandidateSlots(ctx context.Context, in SendCandidateSlotsInput) error {
	ctx = logging.WithInterviewID(ctx, in.InterviewID)
	msg := email.CandidateSlots(in.Candidate, in.Interviewer, in.Slots, in.InterviewID)
	return a.Sender.Send(ctx, msg)
}

// SendInterviewerSlotConfirmation asks the interviewer to accept or
// reject the candidate's requested slot.
func (a *Activities) SendInterviewerSlotConfirmation(ctx context.Context, in SendSlotConfirmationInput) error {
	ctx = logging.WithInterviewID(ctx, in.InterviewID)
	msg := email.InterviewerSlotConfirmation(in.Interviewer, in.Candidate, in.Slot, in.InterviewID)
	return a.Sender.Send(ctx, msg)
}

// SendCandidateSlotRejected tells the candidate their slot was declined.
func (a *Activities) SendCandidateSlotRejected(ctx context.Context, in SendSlotRejectedInput) error {
	ctx = logging.WithInterviewID(ctx, in.InterviewID)
	msg := email.CandidateSlotRejected(in.Candidate, in.Interviewer, in.Slot, in.InterviewID)
	return a.Sender.Send(ctx, msg)
}

// SendInterviewConfirmation announces the agreed slot to both parties.
func (a *Activities) SendInterviewConfirmation(ctx context.Context, in SendConfirmationInput) error {
	ctx = logging.WithInterviewID(ctx, in.InterviewID)
	msg := email.InterviewConfirmation(in.Candidate, in.Interviewer, in.Slot, in.InterviewID, in.MeetLink)
	return a.Sender.Send(ctx, msg)
}

// CreateCalendarEvent puts the confirmed interview on the calendar and
// records the event references in the store.
func (a *Activities) CreateCalendarEvent(ctx context.Context, in CreateCalendarEventInput) (CalendarEventResult, error) {
	ctx = logging.WithInterviewID(ctx, in.InterviewID)
	created, err := a.Calendar.CreateEvent(ctx, calendar.EventInput{
		InterviewID: in.InterviewID,
		Candidate:   in.Candidate,
		Interviewer: in.Interviewer,
		Slot:        in.Slot,
	})
	if err != nil {
		return CalendarEventResult{}, err
	}
	if err := a.Store.SetCalendarInfo(in.InterviewID, created.EventID, created.MeetLink); err != nil {
		a.Log.Warn(ctx, "failed to record calendar references", zap.Error(err))
	}
	if err := a.Store.SetScheduledSlot(in.InterviewID, in.Slot); err != nil {
		a.Log.Warn(ctx, "failed to record scheduled slot", zap.Error(err))
	}
	a.Log.Info(ctx, "calendar event created",
		zap.String("event_id", created.EventID),
		zap.String("meet_link", created.MeetLink))
	return CalendarEventResult{EventID: created.EventID, MeetLink: created.MeetLink, HTMLLink: created.HTMLLink}, nil
}

// AddActiveInterview registers the negotiation with the reply monitor.
func (a *Activities) AddActiveInterview(ctx context.Context, in AddActiveInterviewInput) error {
	ctx = logging.WithInterviewID(ctx, in.InterviewID)
	rec := store.Record{
		InterviewID:  in.InterviewID,
		Candidate:    in.Candidate,
		Interviewer:  in.Interviewer,
		Recruiter:    in.Recruiter,
		ProposedDate: in.ProposedDate,
		Status:       in.Status,
	}
	if err := a.Store.Save(rec); err != nil {
		return fmt.Errorf("register interview %s: %w", in.InterviewID, err)
	}
	a.Log.Info(ctx, "interview registered for reply monitoring")
	return nil
}

// UpdateInterviewStatus mirrors a status transition into the store.
func (a *Activities) UpdateInterviewStatus(ctx context.Context, in UpdateStatusInput) error {
	return a.Store.UpdateStatus(in.InterviewID, in.Status)
}

// RemoveActiveInterview deregisters a finished negotiation.
func (a *Activities) RemoveActiveInterview(ctx context.Context, interviewID string) error {
	ctx = logging.WithInterviewID(ctx, interviewID)
	if err := a.Store.Remove(interviewID); err != nil {
		return err
	}
	a.Log.Info(ctx, "interview removed from reply monitoring")
	return nil
}

func (a *Activities) slotFormURL(interviewID, interviewerName, date string) string {
	q := url.Values{}
	q.Set("token", interviewID)
	q.Set("interviewer", interviewerName)
	q.Set("date", date)
	return fmt.Sprintf("%s/slot-form?%s", a.FormBaseURL, q.Encode())
}
