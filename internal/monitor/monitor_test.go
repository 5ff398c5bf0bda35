package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/api/serviceerror"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/email"
	"github.com/fyrsmithlabs/interviewd/internal/extraction"
	"github.com/fyrsmithlabs/interviewd/internal/logging"
	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
	"github.com/fyrsmithlabs/interviewd/internal/store"
	"github.com/fyrsmithlabs/interviewd/internal/workflows"
)

type fakeReader struct {
	results  map[string][]string
	messages map[string]email.InboundMessage
	queries  []string
}

func (f *fakeReader) Search(_ context.Context, query string) ([]string, error) {
	f.queries = append(f.queries, query)
	return f.results[query], nil
}

func (f *fakeReader) Get(_ context.Context, id string) (email.InboundMessage, error) {
	msg, ok := f.messages[id]
	if !ok {
		return email.InboundMessage{}, fmt.Errorf("no message %s", id)
	}
	return msg, nil
}

type signalCall struct {
	workflowID string
	name       string
	arg        interface{}
}

type fakeSignals struct {
	calls []signalCall
	err   error
}

func (f *fakeSignals) SignalWorkflow(_ context.Context, workflowID, _ string, name string, arg interface{}) error {
	f.calls = append(f.calls, signalCall{workflowID: workflowID, name: name, arg: arg})
	return f.err
}

func unreadQuery(id string) string {
	return fmt.Sprintf("%q is:unread", "InterviewID:"+id)
}

func recentQuery(id string) string {
	return fmt.Sprintf("%q newer_than:2d", "InterviewID:"+id)
}

func newTestMonitor(t *testing.T, reader *fakeReader, signals *fakeSignals) (*Monitor, *store.Store) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "interviews.json"))
	require.NoError(t, st.Save(store.Record{
		InterviewID:  "iv-1",
		Candidate:    negotiation.Party{Name: "Asha Rao", Email: "asha@example.com"},
		Interviewer:  negotiation.Party{Name: "Vik Shah", Email: "vik@example.com"},
		ProposedDate: "2025-07-25",
		Status:       negotiation.StatusWaitingForInterviewerSlots,
	}))

	ex := extraction.New(extraction.Config{})
	ex.Now = func() time.Time { return time.Date(2025, 7, 20, 12, 0, 0, 0, time.UTC) }

	log := logging.NewTestLogger()
	cfg := config.MonitorConfig{PollSpec: "@every 30s", SelfAddress: "scheduler@example.com", DedupLimit: 8}
	return New(signals, reader, st, ex, cfg, log.Logger), st
}

func TestPollRoutesInterviewerSlots(t *testing.T) {
	reader := &fakeReader{
		results: map[string][]string{unreadQuery("iv-1"): {"m1"}},
		messages: map[string]email.InboundMessage{
			"m1": {
				ID:      "m1",
				From:    "vik@example.com",
				Subject: "Re: Interview Request - Available Slots for Asha Rao on 2025-07-25 [InterviewID:iv-1]",
				Body:    "I am free at:\n10:00-11:00\n14:00-15:00\n",
			},
		},
	}
	signals := &fakeSignals{}
	m, _ := newTestMonitor(t, reader, signals)

	m.Poll(context.Background())

	require.Len(t, signals.calls, 1)
	assert.Equal(t, "iv-1", signals.calls[0].workflowID)
	assert.Equal(t, workflows.SignalInterviewerSlots, signals.calls[0].name)
	assert.Equal(t, []negotiation.Slot{
		{Date: "2025-07-25", StartTime: "10:00", EndTime: "11:00"},
		{Date: "2025-07-25", StartTime: "14:00", EndTime: "15:00"},
	}, signals.calls[0].arg)
}

func TestPollRoutesConfirmation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want workflows.ConfirmSlotSignal
	}{
		{
			name: "accept",
			body: "ACCEPT",
			want: workflows.ConfirmSlotSignal{Confirmed: true},
		},
		{
			name: "reject",
			body: "REJECT",
			want: workflows.ConfirmSlotSignal{Confirmed: false},
		},
		{
			name: "reject with counter proposal",
			body: "REJECT, but I could do 2025-07-26 11:00-12:00 instead",
			want: workflows.ConfirmSlotSignal{
				Confirmed:       false,
				CounterProposal: &negotiation.Slot{Date: "2025-07-26", StartTime: "11:00", EndTime: "12:00"},
			},
		},
		{
			name: "unparseable reply counts as rejection",
			body: "hmm let me think about it",
			want: workflows.ConfirmSlotSignal{Confirmed: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{
				results: map[string][]string{unreadQuery("iv-1"): {"m1"}},
				messages: map[string]email.InboundMessage{
					"m1": {
						ID:      "m1",
						From:    "vik@example.com",
						Subject: "Re: Slot Confirmation Required - Asha Rao requests 2025-07-25 from 10:00 to 11:00 [ID:iv-1]",
						Body:    tt.body,
					},
				},
			}
			signals := &fakeSignals{}
			m, _ := newTestMonitor(t, reader, signals)

			m.Poll(context.Background())

			require.Len(t, signals.calls, 1)
			assert.Equal(t, workflows.SignalInterviewerConfirmSlot, signals.calls[0].name)
			assert.Equal(t, tt.want, signals.calls[0].arg)
		})
	}
}

func TestPollSkipsTemplateEcho(t *testing.T) {
	reader := &fakeReader{
		results: map[string][]string{unreadQuery("iv-1"): {"m1"}},
		messages: map[string]email.InboundMessage{
			"m1": {
				ID:      "m1",
				From:    "vik@example.com",
				Subject: "Slot Confirmation Required - Asha Rao requests 2025-07-25 from 10:00 to 11:00 [ID:iv-1]",
				Body:    `<div style="font-family:Arial">Please reply with ACCEPT or REJECT</div>`,
			},
		},
	}
	signals := &fakeSignals{}
	m, _ := newTestMonitor(t, reader, signals)

	m.Poll(context.Background())

	assert.Empty(t, signals.calls)
}

func TestPollRoutesCandidateResponses(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantSignal string
		wantSlot   negotiation.Slot
	}{
		{
			name:       "explicit request",
			body:       "I request 25-07-2025 10:00-11:00",
			wantSignal: workflows.SignalCandidateRequestSlot,
			wantSlot:   negotiation.Slot{Date: "2025-07-25", StartTime: "10:00", EndTime: "11:00"},
		},
		{
			name:       "reschedule with explicit slot",
			body:       "Please reschedule to 26-07-2025 14:00-15:00",
			wantSignal: workflows.SignalCandidateRequestReschedule,
			wantSlot:   negotiation.Slot{Date: "2025-07-26", StartTime: "14:00", EndTime: "15:00"},
		},
		{
			name:       "acceptance with spelled-out slot",
			body:       "I accept 2025-07-25 10:00-11:00, thank you",
			wantSignal: workflows.SignalCandidateRequestSlot,
			wantSlot:   negotiation.Slot{Date: "2025-07-25", StartTime: "10:00", EndTime: "11:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &fakeReader{
				results: map[string][]string{unreadQuery("iv-1"): {"m1"}},
				messages: map[string]email.InboundMessage{
					"m1": {
						ID:      "m1",
						From:    "asha@example.com",
						Subject: "Re: Interview Slots Available - Please Select or Request Reschedule [InterviewID:iv-1]",
						Body:    tt.body,
					},
				},
			}
			signals := &fakeSignals{}
			m, _ := newTestMonitor(t, reader, signals)

			m.Poll(context.Background())

			require.Len(t, signals.calls, 1)
			assert.Equal(t, tt.wantSignal, signals.calls[0].name)
			assert.Equal(t, tt.wantSlot, signals.calls[0].arg)
		})
	}
}

func TestPollSkipsSelfSentMail(t *testing.T) {
	reader := &fakeReader{
		results: map[string][]string{unreadQuery("iv-1"): {"m1"}},
		messages: map[string]email.InboundMessage{
			"m1": {
				ID:      "m1",
				From:    "Interview Scheduler <scheduler@example.com>",
				Subject: "Interview Slots Available - Please Select or Request Reschedule [InterviewID:iv-1]",
				Body:    "I request 2025-07-25 10:00-11:00",
			},
		},
	}
	signals := &fakeSignals{}
	m, _ := newTestMonitor(t, reader, signals)

	m.Poll(context.Background())

	assert.Empty(t, signals.calls)
}

func TestPollDeduplicatesAcrossRuns(t *testing.T) {
	reader := &fakeReader{
		results: map[string][]string{unreadQuery("iv-1"): {"m1"}},
		messages: map[string]email.InboundMessage{
			"m1": {
				ID:      "m1",
				From:    "vik@example.com",
				Subject: "Re: Interview Request [InterviewID:iv-1]",
				Body:    "10:00-11:00",
			},
		},
	}
	signals := &fakeSignals{}
	m, _ := newTestMonitor(t, reader, signals)

	m.Poll(context.Background())
	m.Poll(context.Background())

	assert.Len(t, signals.calls, 1)
}

func TestPollFallsBackToRecentMail(t *testing.T) {
	reader := &fakeReader{
		results: map[string][]string{
			unreadQuery("iv-1"): nil,
			recentQuery("iv-1"): {"m1"},
		},
		messages: map[string]email.InboundMessage{
			"m1": {
				ID:      "m1",
				From:    "vik@example.com",
				Subject: "Re: Interview Request [InterviewID:iv-1]",
				Body:    "09:00-10:00",
			},
		},
	}
	signals := &fakeSignals{}
	m, _ := newTestMonitor(t, reader, signals)

	m.Poll(context.Background())

	require.Contains(t, reader.queries, recentQuery("iv-1"))
	require.Len(t, signals.calls, 1)
}

func TestPollRemovesRecordForCompletedWorkflow(t *testing.T) {
	reader := &fakeReader{
		results: map[string][]string{unreadQuery("iv-1"): {"m1"}},
		messages: map[string]email.InboundMessage{
			"m1": {
				ID:      "m1",
				From:    "vik@example.com",
				Subject: "Re: Interview Request [InterviewID:iv-1]",
				Body:    "10:00-11:00",
			},
		},
	}
	signals := &fakeSignals{err: serviceerror.NewNotFound("workflow execution already completed")}
	m, st := newTestMonitor(t, reader, signals)

	m.Poll(context.Background())

	_, ok := st.Get("iv-1")
	assert.False(t, ok, "stale record should be pruned")
}

func TestPollIgnoresUnrelatedMail(t *testing.T) {
	reader := &fakeReader{
		results: map[string][]string{unreadQuery("iv-1"): {"m1"}},
		messages: map[string]email.InboundMessage{
			"m1": {
				ID:      "m1",
				From:    "newsletter@example.com",
				Subject: "Weekly digest",
				Body:    "10:00-11:00 office hours",
			},
		},
	}
	signals := &fakeSignals{}
	m, _ := newTestMonitor(t, reader, signals)

	m.Poll(context.Background())

	assert.Empty(t, signals.calls)
}

func TestSeenCacheEvictsOldest(t *testing.T) {
	c := newSeenCache(2)
	c.add("a")
	c.add("b")
	c.add("c")

	assert.False(t, c.contains("a"))
	assert.True(t, c.contains("b"))
	assert.True(t, c.contains("c"))
}

func TestParseExplicitSlot(t *testing.T) {
	slot, ok := parseExplicitSlot("how about 2025-08-01 09:30-10:30?")
	require.True(t, ok)
	assert.Equal(t, negotiation.Slot{Date: "2025-08-01", StartTime: "09:30", EndTime: "10:30"}, slot)

	_, ok = parseExplicitSlot("no thanks")
	assert.False(t, ok)

	_, ok = parseExplicitSlot("maybe 2025-08-01 sometime")
	assert.False(t, ok, "date without a time range is not explicit")

	slot, ok = parseExplicitSlot("works for me: 2025-08-01 9:00-10:00")
	require.True(t, ok)
	assert.Equal(t, negotiation.Slot{Date: "2025-08-01", StartTime: "09:00", EndTime: "10:00"}, slot,
		"single-digit hours are zero-padded on the way in")
}

func TestParseSlotLinesPadsHours(t *testing.T) {
	slots := parseSlotLines("- 9:00-10:00\n- 14:00-15:00", "2025-08-01")

	assert.Equal(t, []negotiation.Slot{
		{Date: "2025-08-01", StartTime: "09:00", EndTime: "10:00"},
		{Date: "2025-08-01", StartTime: "14:00", EndTime: "15:00"},
	}, slots)
}
