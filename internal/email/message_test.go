package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

var (
	testCandidate   = negotiation.Party{Name: "Asha Rao", Email: "asha@example.com"}
	testInterviewer = negotiation.Party{Name: "Vik Shah", Email: "vik@example.com"}
	testSlot        = negotiation.Slot{Date: "2025-07-25", StartTime: "10:00", EndTime: "11:00"}
)

func TestInterviewerRequest(t *testing.T) {
	msg := InterviewerRequest(testInterviewer, testCandidate, "2025-07-25", "iv-42",
		"http://localhost:8087/slot-form?token=iv-42&interviewer=Vik+Shah&date=2025-07-25")

	assert.Equal(t, []string{"vik@example.com"}, msg.To)
	assert.Equal(t, "Interview Request - Available Slots for Asha Rao on 2025-07-25 [InterviewID:iv-42]", msg.Subject)
	assert.True(t, msg.HTML)
	assert.Contains(t, msg.Body, "slot-form?token=iv-42")
}

func TestCandidateSlots(t *testing.T) {
	msg := CandidateSlots(testCandidate, testInterviewer, []negotiation.Slot{
		testSlot,
		{Date: "2025-07-25", StartTime: "14:00", EndTime: "15:00"},
	}, "iv-42")

	assert.Equal(t, []string{"asha@example.com"}, msg.To)
	assert.Equal(t, "Interview Slots Available - Please Select or Request Reschedule [InterviewID:iv-42]", msg.Subject)
	assert.False(t, msg.HTML, "candidate slot offers stay plain text so replies are parseable")
	assert.Contains(t, msg.Body, "- 2025-07-25 10:00-11:00")
	assert.Contains(t, msg.Body, "- 2025-07-25 14:00-15:00")
	assert.Contains(t, msg.Body, "provided the following available time slots")
}

func TestInterviewerSlotConfirmation(t *testing.T) {
	msg := InterviewerSlotConfirmation(testInterviewer, testCandidate, testSlot, "iv-42")

	assert.Equal(t, "Slot Confirmation Required - Asha Rao requests 2025-07-25 from 10:00 to 11:00 [ID:iv-42]", msg.Subject)
	assert.True(t, msg.HTML)
	assert.Contains(t, msg.Body, "ACCEPT")
	assert.Contains(t, msg.Body, "REJECT")
}

func TestCandidateSlotRejected(t *testing.T) {
	msg := CandidateSlotRejected(testCandidate, testInterviewer, testSlot, "iv-42")

	assert.Equal(t, []string{"asha@example.com"}, msg.To)
	assert.Equal(t, "Slot Not Available - Please Choose Different Time [ID:iv-42]", msg.Subject)
	assert.Contains(t, msg.Body, "2025-07-25 from 10:00 to 11:00")
}

func TestInterviewConfirmation(t *testing.T) {
	msg := InterviewConfirmation(testCandidate, testInterviewer, testSlot, "iv-42", "https://meet.google.com/abc-defg-hij")

	assert.Equal(t, []string{"asha@example.com", "vik@example.com"}, msg.To)
	assert.Equal(t, "Interview Confirmed - 2025-07-25 10:00-11:00 [InterviewID:iv-42]", msg.Subject)
	assert.Contains(t, msg.Body, "https://meet.google.com/abc-defg-hij")

	noMeet := InterviewConfirmation(testCandidate, testInterviewer, testSlot, "iv-42", "")
	assert.NotContains(t, noMeet.Body, "Google Meet Link")
}

func TestEncode(t *testing.T) {
	raw := encode("scheduler@example.com", Message{
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hello",
		Body:    "line one",
		HTML:    true,
	})

	header, body, found := strings.Cut(raw, "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, header, "From: scheduler@example.com")
	assert.Contains(t, header, "To: a@example.com, b@example.com")
	assert.Contains(t, header, "Content-Type: text/html; charset=\"UTF-8\"")
	assert.Equal(t, "line one", body)

	plain := encode("scheduler@example.com", Message{To: []string{"a@example.com"}, Subject: "x", Body: "y"})
	assert.Contains(t, plain, "Content-Type: text/plain")
}
