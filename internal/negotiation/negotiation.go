// Package negotiation models one interview scheduling attempt as a
// deterministic state machine. The machine itself performs no I/O:
// signals are applied as events and every required side effect is
// returned as an Action for the caller to dispatch. This keeps the
// transition logic replay-safe and testable without mocks.
package negotiation

import "time"

// Status is the negotiation's lifecycle state.
type Status string

const (
	StatusWaitingForInterviewerSlots        Status = "WAITING_FOR_INTERVIEWER_SLOTS"
	StatusWaitingForCandidateResponse       Status = "WAITING_FOR_CANDIDATE_RESPONSE"
	StatusWaitingForInterviewerConfirmation Status = "WAITING_FOR_INTERVIEWER_CONFIRMATION"
	StatusScheduled                         Status = "SCHEDULED"
	// StatusRescheduleNeeded is reserved; no transition currently
	// produces it but stored records may carry it.
	StatusRescheduleNeeded Status = "RESCHEDULE_NEEDED"
	StatusCancelled        Status = "CANCELLED"
	StatusCompleted        Status = "COMPLETED"
)

// Slot is a concrete time window. Dates are YYYY-MM-DD, times are
// 24-hour HH:MM. No timezone offset is carried; a display timezone is
// applied only when rendering into calendar events.
type Slot struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Party is a named email participant.
type Party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Default negotiation limits.
const (
	DefaultMaxRounds = 14
	MaxAge           = 7 * 24 * time.Hour
)

// Negotiation is the central entity, one per scheduling attempt.
type Negotiation struct {
	InterviewID string `json:"interviewId"`

	Candidate   Party `json:"candidate"`
	Interviewer Party `json:"interviewer"`
	Recruiter   Party `json:"recruiter"`

	ProposedDate           string `json:"proposedDate,omitempty"`
	InterviewerSlots       []Slot `json:"interviewerSlots,omitempty"`
	CandidateRequestedSlot *Slot  `json:"candidateRequestedSlot,omitempty"`
	CandidateSelectedSlot  *Slot  `json:"candidateSelectedSlot,omitempty"`
	// RescheduleRequested is reserved for a hard-reset reschedule path
	// alongside StatusRescheduleNeeded. No transition sets it today:
	// reschedules funnel through interviewer confirmation instead.
	RescheduleRequested bool `json:"rescheduleRequested,omitempty"`

	Status    Status `json:"status"`
	Round     int    `json:"round"`
	MaxRounds int    `json:"maxRounds"`

	CalendarEventID string `json:"calendarEventId,omitempty"`
	MeetLink        string `json:"meetLink,omitempty"`
}

// New creates a negotiation in its initial state.
func New(interviewID string, candidate, interviewer, recruiter Party, maxRounds int) *Negotiation {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Negotiation{
		InterviewID: interviewID,
		Candidate:   candidate,
		Interviewer: interviewer,
		Recruiter:   recruiter,
		Status:      StatusWaitingForInterviewerSlots,
		Round:       1,
		MaxRounds:   maxRounds,
	}
}

// Terminal reports whether the negotiation has ended.
func (n *Negotiation) Terminal() bool {
	return n.Status == StatusCancelled || n.Status == StatusCompleted
}

// Resolved reports whether the driving loop should stop waiting for
// signals: the negotiation is either scheduled or terminal.
func (n *Negotiation) Resolved() bool {
	return n.Status == StatusScheduled || n.Terminal()
}

// Expired reports whether the timeout guard should force cancellation:
// the negotiation has aged past MaxAge or exhausted its rounds.
func (n *Negotiation) Expired(age time.Duration) bool {
	return age > MaxAge || n.Round > n.MaxRounds
}

// ResetForReschedule clears per-round state so the next round starts
// from the interviewer-slots request again. Reserved alongside
// RescheduleRequested; the driving loop does not call it yet.
func (n *Negotiation) ResetForReschedule() {
	n.Status = StatusWaitingForInterviewerSlots
	n.InterviewerSlots = nil
	n.CandidateSelectedSlot = nil
	n.RescheduleRequested = false
}
