package monitor

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/email"
	"github.com/fyrsmithlabs/interviewd/internal/extraction"
	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
	"github.com/fyrsmithlabs/interviewd/internal/store"
	"github.com/fyrsmithlabs/interviewd/internal/workflows"
)

var (
	reTimeRange = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
	reISODate   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
)

// route dispatches one reply based on which outbound template it
// answers. Subject markers survive the reply prefix, so substring
// checks are enough.
func (m *Monitor) route(ctx context.Context, rec store.Record, msg email.InboundMessage) {
	subject := msg.Subject

	switch {
	case strings.Contains(subject, "Slot Confirmation Required"):
		m.routeConfirmation(ctx, rec, msg)

	case strings.Contains(subject, "Interview Request") || strings.Contains(subject, "Available Slots"):
		m.routeInterviewerSlots(ctx, rec, msg)

	case strings.Contains(subject, "Slot Not Available") ||
		strings.Contains(subject, "Interview Slots Available") ||
		strings.Contains(strings.ToLower(msg.Body), "reschedule"):
		m.routeCandidateResponse(ctx, rec, msg)

	default:
		m.log.Debug(ctx, "reply did not match any route", zap.String("subject", subject))
	}
}

// routeConfirmation handles the interviewer's ACCEPT/REJECT verdict.
// An unparseable reply counts as a rejection so the candidate is not
// left waiting on a slot the interviewer never clearly confirmed.
func (m *Monitor) routeConfirmation(ctx context.Context, rec store.Record, msg email.InboundMessage) {
	if isTemplateEcho(msg.Body) {
		m.log.Debug(ctx, "skipping template echo")
		return
	}

	cls := extraction.Classify(msg.Body)
	m.log.Info(ctx, "classified confirmation reply",
		zap.String("type", string(cls.Type)),
		zap.Float64("confidence", cls.Confidence))

	sig := workflows.ConfirmSlotSignal{Confirmed: cls.Type == extraction.ResponseAccept}
	if cls.Type == extraction.ResponseReject {
		if counter, ok := parseExplicitSlot(msg.Body); ok {
			sig.CounterProposal = &counter
		}
	}
	m.signal(ctx, rec.InterviewID, workflows.SignalInterviewerConfirmSlot, sig)
}

// routeInterviewerSlots scans the interviewer's reply for time ranges
// and offers them on the proposed date.
func (m *Monitor) routeInterviewerSlots(ctx context.Context, rec store.Record, msg email.InboundMessage) {
	date := rec.ProposedDate
	if date == "" {
		date = m.extractor.Now().Format("2006-01-02")
	}
	slots := parseSlotLines(msg.Body, date)
	if len(slots) == 0 {
		m.log.Debug(ctx, "no time ranges found in interviewer reply")
		return
	}
	m.signal(ctx, rec.InterviewID, workflows.SignalInterviewerSlots, slots)
}

// routeCandidateResponse turns the candidate's free-text reply into a
// slot request or a reschedule.
func (m *Monitor) routeCandidateResponse(ctx context.Context, rec store.Record, msg email.InboundMessage) {
	lower := strings.ToLower(msg.Body)
	snap := snapshotFrom(rec)

	switch {
	case strings.Contains(lower, "request") ||
		strings.Contains(lower, "propose") ||
		strings.Contains(lower, "would like") ||
		strings.Contains(lower, "prefer"):
		slot := m.extractor.Extract(ctx, msg.Body, snap)
		m.signal(ctx, rec.InterviewID, workflows.SignalCandidateRequestSlot, slot)

	case strings.Contains(lower, "reschedule"):
		slot := m.extractor.Extract(ctx, msg.Body, snap)
		m.signal(ctx, rec.InterviewID, workflows.SignalCandidateRequestReschedule, slot)

	case strings.Contains(lower, "accept") || strings.Contains(lower, "thank you"):
		slot, ok := parseExplicitSlot(msg.Body)
		if !ok {
			slot = m.extractor.Extract(ctx, msg.Body, snap)
		}
		m.signal(ctx, rec.InterviewID, workflows.SignalCandidateRequestSlot, slot)

	default:
		m.log.Debug(ctx, "candidate reply matched no intent")
	}
}

// isTemplateEcho detects the scheduler's own HTML template quoted back
// whole, which would otherwise classify on template keywords.
func isTemplateEcho(body string) bool {
	return strings.Contains(body, "<div style=") ||
		strings.Contains(body, "font-family:Arial") ||
		len(body) > 2000
}

// parseSlotLines collects every HH:MM-HH:MM range in the body, one
// slot per range, all on the given date.
func parseSlotLines(body, date string) []negotiation.Slot {
	var slots []negotiation.Slot
	for _, line := range strings.Split(body, "\n") {
		for _, match := range reTimeRange.FindAllStringSubmatch(line, -1) {
			slots = append(slots, negotiation.Slot{
				Date:      date,
				StartTime: padTime(match[1]),
				EndTime:   padTime(match[2]),
			})
		}
	}
	return slots
}

// parseExplicitSlot succeeds only when the body spells out both an ISO
// date and a time range, so it never invents a slot the sender did not
// write.
func parseExplicitSlot(body string) (negotiation.Slot, bool) {
	date := reISODate.FindString(body)
	times := reTimeRange.FindStringSubmatch(body)
	if date == "" || times == nil {
		return negotiation.Slot{}, false
	}
	return negotiation.Slot{Date: date, StartTime: padTime(times[1]), EndTime: padTime(times[2])}, true
}

// padTime zero-pads a single-digit hour. Everything downstream of the
// monitor emits and compares HH:MM only.
func padTime(t string) string {
	if len(t) == 4 {
		return "0" + t
	}
	return t
}

func snapshotFrom(rec store.Record) *extraction.Snapshot {
	snap := &extraction.Snapshot{
		Candidate:     rec.Candidate.Name,
		Interviewer:   rec.Interviewer.Name,
		ScheduledDate: rec.ProposedDate,
	}
	if rec.ScheduledSlot != nil {
		snap.ScheduledDate = rec.ScheduledSlot.Date
		snap.ScheduledStartTime = rec.ScheduledSlot.StartTime
		snap.ScheduledEndTime = rec.ScheduledSlot.EndTime
	}
	return snap
}
