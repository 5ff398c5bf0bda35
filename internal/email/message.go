// Package email renders and transports the scheduler's outbound
// notifications and reads inbound replies. Every outbound message
// embeds a correlation marker ([InterviewID:<id>] or [ID:<id>]) in
// its subject; that marker is the sole mechanism binding free-text
// replies back to a negotiation.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// Sender delivers outbound messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// slotText renders a slot the way recipients see it in email bodies.
func slotText(s negotiation.Slot) string {
	return fmt.Sprintf("%s from %s to %s", s.Date, s.StartTime, s.EndTime)
}

// InterviewerRequest asks the interviewer for available windows on
// the proposed date, linking to the slot submission form.
func InterviewerRequest(interviewer, candidate negotiation.Party, proposedDate, interviewID, formURL string) Message {
	subject := fmt.Sprintf("Interview Request - Available Slots for %s on %s [InterviewID:%s]",
		candidate.Name, proposedDate, interviewID)

	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;padding:24px;">
  <h2 style="color:#1976d2;">Interview Request</h2>
  <p>Dear <b>%s</b>,</p>
  <p>We have an interview request for candidate <b>%s</b> on <b>%s</b>.</p>
  <p>Please provide your available time slots for this date by clicking the button below:</p>
  <p style="text-align:center;margin:32px 0;">
    <a href="%s" style="background:#1976d2;color:#fff;padding:14px 32px;text-decoration:none;border-radius:6px;display:inline-block;">Submit Available Time Slots</a>
  </p>
  <p><small>If the button doesn't work, copy and paste this link into your browser:<br/><a href="%s">%s</a></small></p>
  <div style="background:#f5f5f5;padding:16px;border-radius:4px;margin:20px 0;">
    <p><strong>Instructions:</strong></p>
    <ul>
      <li>You only need to provide time slots (the date is already set to %s)</li>
      <li>Please provide at least one available time slot</li>
      <li>You can provide up to 3 different time slots for flexibility</li>
    </ul>
  </div>
  <p style="margin-top:32px;">Best regards,<br/>Interview Scheduler System</p>
</div>`,
		interviewer.Name, candidate.Name, proposedDate, formURL, formURL, formURL, proposedDate)

	return Message{To: []string{interviewer.Email}, Subject: subject, Body: body, HTML: true}
}

// CandidateSlots offers the interviewer's windows to the candidate.
// Plain text so inline replies stay parseable.
func CandidateSlots(candidate, interviewer negotiation.Party, slots []negotiation.Slot, interviewID string) Message {
	subject := fmt.Sprintf("Interview Slots Available - Please Select or Request Reschedule [InterviewID:%s]", interviewID)

	var list strings.Builder
	for _, s := range slots {
		fmt.Fprintf(&list, "- %s %s-%s\n", s.Date, s.StartTime, s.EndTime)
	}

	body := fmt.Sprintf(`Dear %s,

%s has provided the following available time slots for your interview:

%s
Please reply to this email with:
1. Your preferred slot (e.g., "I request 2024-07-25 10:00-11:00")
2. Or request reschedule with a new date (e.g., "Please reschedule to 2024-07-26")

Best regards,
Interview Scheduler System`,
		candidate.Name, interviewer.Name, list.String())

	return Message{To: []string{candidate.Email}, Subject: subject, Body: body}
}

// InterviewerSlotConfirmation asks the interviewer to ACCEPT or
// REJECT the candidate's requested slot.
func InterviewerSlotConfirmation(interviewer, candidate negotiation.Party, requested negotiation.Slot, interviewID string) Message {
	requestedText := slotText(requested)
	subject := fmt.Sprintf("Slot Confirmation Required - %s requests %s [ID:%s]",
		candidate.Name, requestedText, interviewID)

	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;padding:24px;">
  <h2 style="color:#1976d2;">Slot Confirmation Request</h2>
  <p>Dear <b>%s</b>,</p>
  <p>Candidate <b>%s</b> has requested the following interview slot:</p>
  <div style="background:#e3f2fd;padding:16px;border-radius:8px;margin:20px 0;border-left:4px solid #1976d2;">
    <p style="font-size:1.1rem;margin:8px 0;"><b>%s</b></p>
  </div>
  <p><b>Please reply to this email with one of the following:</b></p>
  <div style="background:#f8f9fa;padding:16px;border-radius:8px;margin:20px 0;">
    <p style="margin:0;"><b>To ACCEPT:</b> Reply with "<b>ACCEPT</b>"</p>
    <p style="margin:8px 0 0 0;"><b>To REJECT:</b> Reply with "<b>REJECT</b>"</p>
  </div>
  <p><small><i>InterviewID: %s</i></small></p>
  <p style="margin-top:32px;">Best regards,<br/>Interview Scheduler System</p>
</div>`,
		interviewer.Name, candidate.Name, requestedText, interviewID)

	return Message{To: []string{interviewer.Email}, Subject: subject, Body: body, HTML: true}
}

// CandidateSlotRejected tells the candidate their requested slot was
// declined and invites a new preference.
func CandidateSlotRejected(candidate, interviewer negotiation.Party, rejected negotiation.Slot, interviewID string) Message {
	subject := fmt.Sprintf("Slot Not Available - Please Choose Different Time [ID:%s]", interviewID)

	body := fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;padding:24px;">
  <h2 style="color:#f44336;">Slot Not Available</h2>
  <p>Dear <b>%s</b>,</p>
  <p>Unfortunately, <b>%s</b> is not available for the requested slot:</p>
  <div style="background:#ffebee;padding:16px;border-radius:8px;margin:20px 0;border-left:4px solid #f44336;">
    <p style="margin:0;color:#c62828;"><b>Unavailable Slot:</b> %s</p>
  </div>
  <p><b>Please reply to this email with a different time preference.</b></p>
  <div style="background:#f8f9fa;padding:16px;border-radius:8px;margin:20px 0;">
    <p style="margin:0;"><b>How to respond:</b></p>
    <p style="margin:8px 0 0 0;">Reply with your new preferred time, for example:</p>
    <p style="margin:8px 0 0 0;font-style:italic;">"Please reschedule to 2025-07-31 14:00-15:00"</p>
  </div>
  <p><small><i>InterviewID: %s</i></small></p>
  <p style="margin-top:32px;">Best regards,<br/>Interview Scheduler System</p>
</div>`,
		candidate.Name, interviewer.Name, slotText(rejected), interviewID)

	return Message{To: []string{candidate.Email}, Subject: subject, Body: body, HTML: true}
}

// InterviewConfirmation announces the final agreed slot to both
// participants.
func InterviewConfirmation(candidate, interviewer negotiation.Party, selected negotiation.Slot, interviewID, meetLink string) Message {
	subject := fmt.Sprintf("Interview Confirmed - %s %s-%s [InterviewID:%s]",
		selected.Date, selected.StartTime, selected.EndTime, interviewID)

	meetLine := ""
	if meetLink != "" {
		meetLine = fmt.Sprintf("\n\nGoogle Meet Link: %s", meetLink)
	}

	body := fmt.Sprintf(`Dear %s and %s,

Your interview has been confirmed for:
Date: %s
Time: %s-%s%s

Please ensure you are available at this time.

Best regards,
Interview Scheduler System`,
		candidate.Name, interviewer.Name,
		selected.Date, selected.StartTime, selected.EndTime, meetLine)

	return Message{To: []string{candidate.Email, interviewer.Email}, Subject: subject, Body: body}
}
