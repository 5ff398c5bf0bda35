package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "scheduled-interviews.json"))
}

func testRecord(id string) Record {
	return Record{
		InterviewID: id,
		Candidate:   negotiation.Party{Name: "Vinayak Tiwari", Email: "candidate@example.com"},
		Interviewer: negotiation.Party{Name: "Robert Tiwari", Email: "interviewer@example.com"},
		Recruiter:   negotiation.Party{Name: "Priya Sharma", Email: "recruiter@example.com"},
		Status:      negotiation.StatusWaitingForInterviewerSlots,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(testRecord("interview-1")))

	rec, ok := s.Get("interview-1")
	require.True(t, ok)
	assert.Equal(t, "Vinayak Tiwari", rec.Candidate.Name)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.False(t, rec.UpdatedAt.IsZero())

	_, ok = s.Get("interview-missing")
	assert.False(t, ok)
}

func TestSaveIsUpsert(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(testRecord("interview-1")))
	first, _ := s.Get("interview-1")

	updated := testRecord("interview-1")
	updated.ProposedDate = "2025-08-20"
	require.NoError(t, s.Save(updated))

	rec, ok := s.Get("interview-1")
	require.True(t, ok)
	assert.Equal(t, "2025-08-20", rec.ProposedDate)
	assert.Equal(t, first.CreatedAt, rec.CreatedAt, "CreatedAt survives upserts")
	assert.Len(t, s.ListAll(), 1)
}

func TestUpdateStatusAndCalendarInfo(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(testRecord("interview-1")))

	require.NoError(t, s.UpdateStatus("interview-1", negotiation.StatusScheduled))
	require.NoError(t, s.SetCalendarInfo("interview-1", "evt-42", "https://meet.google.com/abc-defg-hij"))
	require.NoError(t, s.SetScheduledSlot("interview-1", negotiation.Slot{Date: "2025-08-20", StartTime: "14:00", EndTime: "15:00"}))

	rec, _ := s.Get("interview-1")
	assert.Equal(t, negotiation.StatusScheduled, rec.Status)
	assert.Equal(t, "evt-42", rec.CalendarEventID)
	require.NotNil(t, rec.ScheduledSlot)
	assert.Equal(t, "14:00", rec.ScheduledSlot.StartTime)

	// Unknown IDs are a no-op, not an error.
	assert.NoError(t, s.UpdateStatus("interview-missing", negotiation.StatusCancelled))
}

func TestListActive(t *testing.T) {
	s := newTestStore(t)

	active := testRecord("interview-1")
	done := testRecord("interview-2")
	done.Status = negotiation.StatusCompleted
	cancelled := testRecord("interview-3")
	cancelled.Status = negotiation.StatusCancelled

	require.NoError(t, s.Save(active))
	require.NoError(t, s.Save(done))
	require.NoError(t, s.Save(cancelled))

	got := s.ListActive()
	require.Len(t, got, 1)
	assert.Equal(t, "interview-1", got[0].InterviewID)
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(testRecord("interview-1")))
	require.NoError(t, s.Save(testRecord("interview-2")))

	require.NoError(t, s.Remove("interview-1"))
	assert.Len(t, s.ListAll(), 1)

	require.NoError(t, s.Remove("interview-unknown"))
	assert.Len(t, s.ListAll(), 1)
}

func TestCorruptFileSelfHeals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduled-interviews.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := New(path)
	assert.Empty(t, s.ListAll())

	require.NoError(t, s.Save(testRecord("interview-1")))
	assert.Len(t, s.ListAll(), 1)
}

func TestMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.ListAll())
	assert.Empty(t, s.ListActive())
}

func TestConcurrentSaves(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	ids := []string{"interview-1", "interview-2", "interview-3", "interview-4"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				require.NoError(t, s.Save(testRecord(id)))
			}
		}(id)
	}
	wg.Wait()

	assert.Len(t, s.ListAll(), len(ids))
}
