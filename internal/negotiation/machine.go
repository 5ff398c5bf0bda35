package negotiation

// Event is a signal delivered to the negotiation. Events are applied
// sequentially, never concurrently, by the owning workflow.
type Event interface {
	isEvent()
}

// RecruiterBookSlot pins the negotiation to a proposed date. Valid at
// any time before scheduling; re-delivery overwrites the date.
type RecruiterBookSlot struct {
	Date string `json:"date"`
}

// InterviewerSlots records the windows offered by the interviewer.
type InterviewerSlots struct {
	Slots []Slot `json:"slots"`
}

// CandidateRequestSlot is the candidate proposing a specific window,
// either from the offered list or a new one.
type CandidateRequestSlot struct {
	Slot Slot `json:"slot"`
}

// InterviewerConfirmSlot is the interviewer's answer to a pending
// candidate request. A counter-proposal takes precedence over a bare
// rejection.
type InterviewerConfirmSlot struct {
	Confirmed       bool  `json:"confirmed"`
	CounterProposal *Slot `json:"counterProposal,omitempty"`
}

// CandidateRequestReschedule is the candidate asking for a different
// time entirely; it funnels through the same interviewer-confirmation
// path as a fresh slot request.
type CandidateRequestReschedule struct {
	Slot Slot `json:"slot"`
}

// Cancel terminates the negotiation from any non-terminal state.
type Cancel struct{}

func (RecruiterBookSlot) isEvent()          {}
func (InterviewerSlots) isEvent()           {}
func (CandidateRequestSlot) isEvent()       {}
func (InterviewerConfirmSlot) isEvent()     {}
func (CandidateRequestReschedule) isEvent() {}
func (Cancel) isEvent()                     {}

// ActionType identifies a side effect requested by a transition.
type ActionType string

const (
	// ActionSendCandidateSlots emails the offered windows to the candidate.
	ActionSendCandidateSlots ActionType = "SEND_CANDIDATE_SLOTS"
	// ActionRequestInterviewerConfirmation asks the interviewer to
	// accept or reject the candidate's requested slot.
	ActionRequestInterviewerConfirmation ActionType = "REQUEST_INTERVIEWER_CONFIRMATION"
	// ActionNotifyCandidateRejected tells the candidate their requested
	// slot was declined.
	ActionNotifyCandidateRejected ActionType = "NOTIFY_CANDIDATE_REJECTED"
	// ActionRecordStatus mirrors the new status into the flat store.
	ActionRecordStatus ActionType = "RECORD_STATUS"
)

// Action is a side effect the caller must dispatch after a transition.
type Action struct {
	Type   ActionType `json:"type"`
	Slot   Slot       `json:"slot,omitempty"`
	Slots  []Slot     `json:"slots,omitempty"`
	Status Status     `json:"status,omitempty"`
}

// Apply runs one transition. It mutates the negotiation and returns
// the side effects the transition requires, in dispatch order.
// Events arriving after the negotiation resolves are discarded: once a
// slot is confirmed, a late availability or booking signal must not
// pull the status back out of SCHEDULED.
func (n *Negotiation) Apply(ev Event) []Action {
	if n.Resolved() {
		return nil
	}

	switch e := ev.(type) {
	case RecruiterBookSlot:
		n.ProposedDate = e.Date
		n.Status = StatusWaitingForInterviewerSlots
		return []Action{recordStatus(n.Status)}

	case InterviewerSlots:
		n.InterviewerSlots = e.Slots
		n.Status = StatusWaitingForCandidateResponse
		return []Action{
			{Type: ActionSendCandidateSlots, Slots: e.Slots},
			recordStatus(n.Status),
		}

	case CandidateRequestSlot:
		return n.requestSlot(e.Slot)

	case CandidateRequestReschedule:
		return n.requestSlot(e.Slot)

	case InterviewerConfirmSlot:
		return n.confirmSlot(e)

	case Cancel:
		n.Status = StatusCancelled
		return []Action{recordStatus(n.Status)}
	}

	return nil
}

// requestSlot handles both fresh candidate requests and reschedules:
// every counter-proposal funnels through one interviewer-confirmation
// state regardless of origin.
func (n *Negotiation) requestSlot(slot Slot) []Action {
	s := slot
	n.CandidateRequestedSlot = &s
	n.Status = StatusWaitingForInterviewerConfirmation
	n.Round++
	return []Action{
		{Type: ActionRequestInterviewerConfirmation, Slot: slot},
		recordStatus(n.Status),
	}
}

func (n *Negotiation) confirmSlot(e InterviewerConfirmSlot) []Action {
	switch {
	case e.Confirmed && n.CandidateRequestedSlot != nil:
		n.CandidateSelectedSlot = n.CandidateRequestedSlot
		n.CandidateRequestedSlot = nil
		n.Status = StatusScheduled
		return []Action{recordStatus(n.Status)}

	case e.CounterProposal != nil:
		n.InterviewerSlots = []Slot{*e.CounterProposal}
		n.Round++
		n.Status = StatusWaitingForCandidateResponse
		return []Action{recordStatus(n.Status)}

	case n.CandidateRequestedSlot != nil:
		// Rejection with no counter-proposal. The offered slots are
		// deliberately left in place so the candidate can pick again.
		rejected := *n.CandidateRequestedSlot
		n.CandidateRequestedSlot = nil
		n.Round++
		n.Status = StatusWaitingForCandidateResponse
		return []Action{
			{Type: ActionNotifyCandidateRejected, Slot: rejected},
			recordStatus(n.Status),
		}
	}

	// Confirmation with nothing pending is a stale duplicate.
	return nil
}

func recordStatus(s Status) Action {
	return Action{Type: ActionRecordStatus, Status: s}
}
