// Package workflows provides the Temporal workflow driving interview
// scheduling negotiations.
package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

// Signal names. The monitor and CLI address the workflow through
// these; changing one breaks reply routing for in-flight interviews.
const (
	SignalRecruiterBookSlot          = "RECRUITER_BOOK_SLOT"
	SignalInterviewerSlots           = "INTERVIEWER_SLOTS"
	SignalCandidateRequestSlot       = "CANDIDATE_REQUEST_SLOT"
	SignalInterviewerConfirmSlot     = "INTERVIEWER_CONFIRM_SLOT"
	SignalCandidateRequestReschedule = "CANDIDATE_REQUEST_RESCHEDULE"
	SignalCancel                     = "CANCEL"
)

// QueryStatus returns the current negotiation snapshot.
const QueryStatus = "status"

// pollInterval bounds how long the workflow sleeps between checks
// when no signal arrives.
const pollInterval = 10 * time.Second

// SchedulingInput starts a negotiation.
type SchedulingInput struct {
	InterviewID  string            `json:"interviewId"`
	Candidate    negotiation.Party `json:"candidate"`
	Interviewer  negotiation.Party `json:"interviewer"`
	Recruiter    negotiation.Party `json:"recruiter"`
	ProposedDate string            `json:"proposedDate"`
	MaxRounds    int               `json:"maxRounds"`
}

// ConfirmSlotSignal carries the interviewer's verdict on the
// candidate's requested slot.
type ConfirmSlotSignal struct {
	Confirmed       bool              `json:"confirmed"`
	CounterProposal *negotiation.Slot `json:"counterProposal,omitempty"`
}

// InterviewSchedulingWorkflow negotiates one interview to a terminal
// state. All decisions live in the negotiation reducer; this function
// only pumps signals into it and runs the actions it emits as
// activities.
func InterviewSchedulingWorkflow(ctx workflow.Context, input SchedulingInput) (string, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting interview scheduling",
		"interview_id", input.InterviewID,
		"candidate", input.Candidate.Email,
		"interviewer", input.Interviewer.Email)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	n := negotiation.New(input.InterviewID, input.Candidate, input.Interviewer, input.Recruiter, input.MaxRounds)
	n.ProposedDate = input.ProposedDate
	started := workflow.Now(ctx)

	if err := workflow.SetQueryHandler(ctx, QueryStatus, func() (negotiation.Negotiation, error) {
		return *n, nil
	}); err != nil {
		return "", fmt.Errorf("register %s query: %w", QueryStatus, err)
	}

	var a *Activities

	// Register with the reply monitor before any email goes out so the
	// first response can already be routed.
	if err := workflow.ExecuteActivity(ctx, a.AddActiveInterview, AddActiveInterviewInput{
		InterviewID:  n.InterviewID,
		Candidate:    n.Candidate,
		Interviewer:  n.Interviewer,
		Recruiter:    n.Recruiter,
		ProposedDate: n.ProposedDate,
		Status:       n.Status,
	}).Get(ctx, nil); err != nil {
		return "", NewWorkflowError("add_active_interview", ErrorSeverityCritical, err, n.InterviewID)
	}

	bookCh := workflow.GetSignalChannel(ctx, SignalRecruiterBookSlot)
	slotsCh := workflow.GetSignalChannel(ctx, SignalInterviewerSlots)
	requestCh := workflow.GetSignalChannel(ctx, SignalCandidateRequestSlot)
	confirmCh := workflow.GetSignalChannel(ctx, SignalInterviewerConfirmSlot)
	rescheduleCh := workflow.GetSignalChannel(ctx, SignalCandidateRequestReschedule)
	cancelCh := workflow.GetSignalChannel(ctx, SignalCancel)

	// interviewerAsked tracks whether the availability request email
	// went out for the current WAITING_FOR_INTERVIEWER_SLOTS entry, so
	// a reschedule round triggers a fresh request.
	interviewerAsked := false

	for !n.Resolved() {
		if n.Expired(workflow.Now(ctx).Sub(started)) {
			logger.Info("Negotiation expired",
				"interview_id", n.InterviewID,
				"round", n.Round,
				"age", workflow.Now(ctx).Sub(started).String())
			dispatch(ctx, a, n, negotiation.Cancel{})
			break
		}

		if n.ProposedDate != "" && n.Status == negotiation.StatusWaitingForInterviewerSlots && len(n.InterviewerSlots) == 0 {
			if !interviewerAsked {
				logger.Info("Requesting interviewer availability", "round", n.Round)
				err := workflow.ExecuteActivity(ctx, a.SendInterviewerRequest, SendInterviewerRequestInput{
					InterviewID:  n.InterviewID,
					Interviewer:  n.Interviewer,
					Candidate:    n.Candidate,
					ProposedDate: n.ProposedDate,
				}).Get(ctx, nil)
				if err != nil {
					logger.Error("Interviewer request email failed", "error", err)
				}
				interviewerAsked = true
			}
		} else if n.Status != negotiation.StatusWaitingForInterviewerSlots {
			interviewerAsked = false
		}

		timerCtx, cancelTimer := workflow.WithCancel(ctx)
		selector := workflow.NewSelector(ctx)
		selector.AddReceive(bookCh, func(c workflow.ReceiveChannel, _ bool) {
			var date string
			c.Receive(ctx, &date)
			dispatch(ctx, a, n, negotiation.RecruiterBookSlot{Date: date})
		})
		selector.AddReceive(slotsCh, func(c workflow.ReceiveChannel, _ bool) {
			var slots []negotiation.Slot
			c.Receive(ctx, &slots)
			dispatch(ctx, a, n, negotiation.InterviewerSlots{Slots: slots})
		})
		selector.AddReceive(requestCh, func(c workflow.ReceiveChannel, _ bool) {
			var slot negotiation.Slot
			c.Receive(ctx, &slot)
			dispatch(ctx, a, n, negotiation.CandidateRequestSlot{Slot: slot})
		})
		selector.AddReceive(confirmCh, func(c workflow.ReceiveChannel, _ bool) {
			var sig ConfirmSlotSignal
			c.Receive(ctx, &sig)
			dispatch(ctx, a, n, negotiation.InterviewerConfirmSlot{
				Confirmed:       sig.Confirmed,
				CounterProposal: sig.CounterProposal,
			})
		})
		selector.AddReceive(rescheduleCh, func(c workflow.ReceiveChannel, _ bool) {
			var slot negotiation.Slot
			c.Receive(ctx, &slot)
			dispatch(ctx, a, n, negotiation.CandidateRequestReschedule{Slot: slot})
		})
		selector.AddReceive(cancelCh, func(c workflow.ReceiveChannel, _ bool) {
			c.Receive(ctx, nil)
			dispatch(ctx, a, n, negotiation.Cancel{})
		})
		selector.AddFuture(workflow.NewTimer(timerCtx, pollInterval), func(workflow.Future) {})
		selector.Select(ctx)
		cancelTimer()

		// Drain signals that queued up behind the one just handled.
		for selector.HasPending() {
			selector.Select(ctx)
		}
	}

	return finalize(ctx, a, n)
}

// dispatch feeds one event through the reducer and executes the
// resulting actions. Action failures are logged and swallowed: a lost
// email stalls a round but must not corrupt the negotiation.
func dispatch(ctx workflow.Context, a *Activities, n *negotiation.Negotiation, ev negotiation.Event) {
	logger := workflow.GetLogger(ctx)
	for _, action := range n.Apply(ev) {
		var err error
		switch action.Type {
		case negotiation.ActionSendCandidateSlots:
			err = workflow.ExecuteActivity(ctx, a.SendCandidateSlots, SendCandidateSlotsInput{
				InterviewID: n.InterviewID,
				Candidate:   n.Candidate,
				Interviewer: n.Interviewer,
				Slots:       action.Slots,
			}).Get(ctx, nil)
		case negotiation.ActionRequestInterviewerConfirmation:
			err = workflow.ExecuteActivity(ctx, a.SendInterviewerSlotConfirmation, SendSlotConfirmationInput{
				InterviewID: n.InterviewID,
				Interviewer: n.Interviewer,
				Candidate:   n.Candidate,
				Slot:        action.Slot,
			}).Get(ctx, nil)
		case negotiation.ActionNotifyCandidateRejected:
			err = workflow.ExecuteActivity(ctx, a.SendCandidateSlotRejected, SendSlotRejectedInput{
				InterviewID: n.InterviewID,
				Candidate:   n.Candidate,
				Interviewer: n.Interviewer,
				Slot:        action.Slot,
			}).Get(ctx, nil)
		case negotiation.ActionRecordStatus:
			err = workflow.ExecuteActivity(ctx, a.UpdateInterviewStatus, UpdateStatusInput{
				InterviewID: n.InterviewID,
				Status:      action.Status,
			}).Get(ctx, nil)
		}
		if err != nil {
			logger.Error("Action failed",
				"action", string(action.Type),
				"round", n.Round,
				"error", err)
		}
	}
}

// finalize runs the terminal side effects. Calendar and confirmation
// failures are reported but do not undo a scheduled interview.
func finalize(ctx workflow.Context, a *Activities, n *negotiation.Negotiation) (string, error) {
	logger := workflow.GetLogger(ctx)

	if n.Status != negotiation.StatusScheduled {
		if err := workflow.ExecuteActivity(ctx, a.RemoveActiveInterview, n.InterviewID).Get(ctx, nil); err != nil {
			logger.Error("Failed to deregister interview", "error", err)
		}
		if n.Status == negotiation.StatusCancelled {
			return "Interview cancelled.", nil
		}
		return fmt.Sprintf("Workflow ended: %s", n.Status), nil
	}

	selected := *n.CandidateSelectedSlot

	var created CalendarEventResult
	err := workflow.ExecuteActivity(ctx, a.CreateCalendarEvent, CreateCalendarEventInput{
		InterviewID: n.InterviewID,
		Candidate:   n.Candidate,
		Interviewer: n.Interviewer,
		Slot:        selected,
	}).Get(ctx, &created)
	if err != nil {
		logger.Error("Calendar event creation failed",
			"error", NewWorkflowError("create_calendar_event", ErrorSeverityHigh, err, n.InterviewID))
	} else {
		n.CalendarEventID = created.EventID
		n.MeetLink = created.MeetLink
	}

	err = workflow.ExecuteActivity(ctx, a.SendInterviewConfirmation, SendConfirmationInput{
		InterviewID: n.InterviewID,
		Candidate:   n.Candidate,
		Interviewer: n.Interviewer,
		Slot:        selected,
		MeetLink:    n.MeetLink,
	}).Get(ctx, nil)
	if err != nil {
		logger.Error("Confirmation email failed",
			"error", NewWorkflowError("send_confirmation", ErrorSeverityHigh, err, n.InterviewID))
	}

	n.Status = negotiation.StatusCompleted
	if err := workflow.ExecuteActivity(ctx, a.UpdateInterviewStatus, UpdateStatusInput{
		InterviewID: n.InterviewID,
		Status:      negotiation.StatusCompleted,
	}).Get(ctx, nil); err != nil {
		logger.Error("Failed to record completion", "error", err)
	}
	if err := workflow.ExecuteActivity(ctx, a.RemoveActiveInterview, n.InterviewID).Get(ctx, nil); err != nil {
		logger.Error("Failed to deregister interview", "error", err)
	}

	return fmt.Sprintf("Interview scheduled successfully for %s %s-%s",
		selected.Date, selected.StartTime, selected.EndTime), nil
}
