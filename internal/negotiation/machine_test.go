package negotiation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNegotiation() *Negotiation {
	return New("interview-test-1",
		Party{Name: "Vinayak Tiwari", Email: "candidate@example.com"},
		Party{Name: "Robert Tiwari", Email: "interviewer@example.com"},
		Party{Name: "Priya Sharma", Email: "recruiter@example.com"},
		0)
}

func actionTypes(actions []Action) []ActionType {
	types := make([]ActionType, len(actions))
	for i, a := range actions {
		types[i] = a.Type
	}
	return types
}

func TestNewNegotiation(t *testing.T) {
	n := newTestNegotiation()

	assert.Equal(t, StatusWaitingForInterviewerSlots, n.Status)
	assert.Equal(t, 1, n.Round)
	assert.Equal(t, DefaultMaxRounds, n.MaxRounds)
	assert.False(t, n.Terminal())
}

func TestHappyPathToScheduled(t *testing.T) {
	n := newTestNegotiation()

	actions := n.Apply(RecruiterBookSlot{Date: "2024-07-25"})
	assert.Equal(t, "2024-07-25", n.ProposedDate)
	assert.Equal(t, []ActionType{ActionRecordStatus}, actionTypes(actions))

	offered := []Slot{
		{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"},
		{Date: "2024-07-25", StartTime: "14:00", EndTime: "15:00"},
	}
	actions = n.Apply(InterviewerSlots{Slots: offered})
	assert.Equal(t, StatusWaitingForCandidateResponse, n.Status)
	assert.Equal(t, []ActionType{ActionSendCandidateSlots, ActionRecordStatus}, actionTypes(actions))
	assert.Equal(t, offered, actions[0].Slots)

	picked := Slot{Date: "2024-07-25", StartTime: "14:00", EndTime: "15:00"}
	actions = n.Apply(CandidateRequestSlot{Slot: picked})
	assert.Equal(t, StatusWaitingForInterviewerConfirmation, n.Status)
	assert.Equal(t, 2, n.Round)
	require.Equal(t, []ActionType{ActionRequestInterviewerConfirmation, ActionRecordStatus}, actionTypes(actions))
	assert.Equal(t, picked, actions[0].Slot)

	actions = n.Apply(InterviewerConfirmSlot{Confirmed: true})
	assert.Equal(t, StatusScheduled, n.Status)
	require.NotNil(t, n.CandidateSelectedSlot)
	assert.Equal(t, picked, *n.CandidateSelectedSlot)
	assert.Nil(t, n.CandidateRequestedSlot)
	assert.Equal(t, []ActionType{ActionRecordStatus}, actionTypes(actions))
	assert.True(t, n.Resolved())
}

func TestRejectionWithoutCounterProposal(t *testing.T) {
	n := newTestNegotiation()
	n.Apply(RecruiterBookSlot{Date: "2024-07-25"})
	offered := []Slot{{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}}
	n.Apply(InterviewerSlots{Slots: offered})
	n.Apply(CandidateRequestSlot{Slot: Slot{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}})
	roundBefore := n.Round

	actions := n.Apply(InterviewerConfirmSlot{Confirmed: false})

	assert.Equal(t, StatusWaitingForCandidateResponse, n.Status)
	assert.Nil(t, n.CandidateRequestedSlot)
	assert.Equal(t, roundBefore+1, n.Round)

	rejections := 0
	for _, a := range actions {
		if a.Type == ActionNotifyCandidateRejected {
			rejections++
			assert.Equal(t, "10:00", a.Slot.StartTime)
		}
	}
	assert.Equal(t, 1, rejections, "exactly one rejection notification")

	// The offered slots stay visible for the candidate's next pick.
	assert.Equal(t, offered, n.InterviewerSlots)
}

func TestCounterProposal(t *testing.T) {
	n := newTestNegotiation()
	n.Apply(RecruiterBookSlot{Date: "2024-07-25"})
	n.Apply(InterviewerSlots{Slots: []Slot{{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}}})
	n.Apply(CandidateRequestSlot{Slot: Slot{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}})
	roundBefore := n.Round

	counter := Slot{Date: "2024-07-26", StartTime: "09:00", EndTime: "10:00"}
	actions := n.Apply(InterviewerConfirmSlot{Confirmed: false, CounterProposal: &counter})

	assert.Equal(t, StatusWaitingForCandidateResponse, n.Status)
	assert.Equal(t, []Slot{counter}, n.InterviewerSlots)
	assert.Equal(t, roundBefore+1, n.Round)
	assert.Equal(t, []ActionType{ActionRecordStatus}, actionTypes(actions))
}

func TestRescheduleFunnelsThroughConfirmation(t *testing.T) {
	n := newTestNegotiation()
	n.Apply(RecruiterBookSlot{Date: "2024-07-25"})
	n.Apply(InterviewerSlots{Slots: []Slot{{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}}})
	roundBefore := n.Round

	slot := Slot{Date: "2024-07-28", StartTime: "15:00", EndTime: "16:00"}
	actions := n.Apply(CandidateRequestReschedule{Slot: slot})

	assert.Equal(t, StatusWaitingForInterviewerConfirmation, n.Status)
	assert.Equal(t, roundBefore+1, n.Round)
	require.NotNil(t, n.CandidateRequestedSlot)
	assert.Equal(t, slot, *n.CandidateRequestedSlot)
	assert.Equal(t, ActionRequestInterviewerConfirmation, actions[0].Type)
}

func TestStaleConfirmationIsDiscarded(t *testing.T) {
	n := newTestNegotiation()
	n.Apply(RecruiterBookSlot{Date: "2024-07-25"})
	roundBefore := n.Round

	actions := n.Apply(InterviewerConfirmSlot{Confirmed: true})

	assert.Nil(t, actions)
	assert.Equal(t, roundBefore, n.Round)
	assert.Nil(t, n.CandidateSelectedSlot)
}

func TestCancelFromAnyState(t *testing.T) {
	states := []func(n *Negotiation){
		func(n *Negotiation) {},
		func(n *Negotiation) { n.Apply(RecruiterBookSlot{Date: "2024-07-25"}) },
		func(n *Negotiation) {
			n.Apply(RecruiterBookSlot{Date: "2024-07-25"})
			n.Apply(InterviewerSlots{Slots: []Slot{{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}}})
		},
	}

	for _, setup := range states {
		n := newTestNegotiation()
		setup(n)
		n.Apply(Cancel{})
		assert.Equal(t, StatusCancelled, n.Status)
		assert.True(t, n.Terminal())
		assert.Nil(t, n.CandidateSelectedSlot, "never both cancelled and selected")
	}
}

func TestEventsAfterScheduledAreDiscarded(t *testing.T) {
	n := newTestNegotiation()
	n.Apply(RecruiterBookSlot{Date: "2024-07-25"})
	picked := Slot{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}
	n.Apply(InterviewerSlots{Slots: []Slot{picked}})
	n.Apply(CandidateRequestSlot{Slot: picked})
	n.Apply(InterviewerConfirmSlot{Confirmed: true})
	require.Equal(t, StatusScheduled, n.Status)

	// Redelivered availability or booking signals must not pull a
	// confirmed negotiation back into a waiting state.
	late := []Event{
		InterviewerSlots{Slots: []Slot{{Date: "2024-07-26", StartTime: "09:00", EndTime: "10:00"}}},
		RecruiterBookSlot{Date: "2024-07-26"},
		Cancel{},
	}
	for _, ev := range late {
		actions := n.Apply(ev)
		assert.Nil(t, actions)
		assert.Equal(t, StatusScheduled, n.Status)
		require.NotNil(t, n.CandidateSelectedSlot)
		assert.Equal(t, picked, *n.CandidateSelectedSlot)
	}
}

func TestEventsAfterTerminalAreDiscarded(t *testing.T) {
	n := newTestNegotiation()
	n.Apply(Cancel{})

	actions := n.Apply(CandidateRequestSlot{Slot: Slot{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}})
	assert.Nil(t, actions)
	assert.Equal(t, StatusCancelled, n.Status)
	assert.Equal(t, 1, n.Round)
}

func TestRoundNeverDecreases(t *testing.T) {
	n := newTestNegotiation()
	counter := Slot{Date: "2024-07-26", StartTime: "09:00", EndTime: "10:00"}
	events := []Event{
		RecruiterBookSlot{Date: "2024-07-25"},
		InterviewerSlots{Slots: []Slot{{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}}},
		CandidateRequestSlot{Slot: Slot{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}},
		InterviewerConfirmSlot{Confirmed: false, CounterProposal: &counter},
		CandidateRequestReschedule{Slot: Slot{Date: "2024-07-27", StartTime: "11:00", EndTime: "12:00"}},
		InterviewerConfirmSlot{Confirmed: false},
		RecruiterBookSlot{Date: "2024-07-29"},
	}

	last := n.Round
	for _, ev := range events {
		n.Apply(ev)
		assert.GreaterOrEqual(t, n.Round, last)
		last = n.Round
	}
}

func TestExpired(t *testing.T) {
	n := newTestNegotiation()

	assert.False(t, n.Expired(6*24*time.Hour))
	assert.True(t, n.Expired(7*24*time.Hour+time.Minute))

	n.Round = n.MaxRounds
	assert.False(t, n.Expired(time.Hour))
	n.Round = n.MaxRounds + 1
	assert.True(t, n.Expired(time.Hour))
}

func TestResetForReschedule(t *testing.T) {
	n := newTestNegotiation()
	n.Apply(RecruiterBookSlot{Date: "2024-07-25"})
	n.Apply(InterviewerSlots{Slots: []Slot{{Date: "2024-07-25", StartTime: "10:00", EndTime: "11:00"}}})
	n.RescheduleRequested = true

	n.ResetForReschedule()

	assert.Equal(t, StatusWaitingForInterviewerSlots, n.Status)
	assert.Nil(t, n.InterviewerSlots)
	assert.Nil(t, n.CandidateSelectedSlot)
	assert.False(t, n.RescheduleRequested)
	assert.Equal(t, "2024-07-25", n.ProposedDate, "proposed date survives a reset")
}
