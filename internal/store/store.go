// Package store persists denormalized interview snapshots to a flat
// JSON file. It is an operator-visibility record with last-write-wins
// semantics, not the source of truth for negotiation state: the
// workflow engine owns that.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

// Record is one interview's denormalized snapshot.
type Record struct {
	InterviewID string `json:"interviewId"`

	Candidate   negotiation.Party `json:"candidate"`
	Interviewer negotiation.Party `json:"interviewer"`
	Recruiter   negotiation.Party `json:"recruiter"`

	ProposedDate  string             `json:"proposedDate,omitempty"`
	ScheduledSlot *negotiation.Slot  `json:"scheduledSlot,omitempty"`
	Status        negotiation.Status `json:"status"`

	CalendarEventID string `json:"calendarEventId,omitempty"`
	MeetLink        string `json:"meetLink,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the record still needs inbound-email
// monitoring.
func (r Record) Active() bool {
	return r.Status != negotiation.StatusCancelled && r.Status != negotiation.StatusCompleted
}

// Store is a mutex-guarded flat file of records keyed by interview ID.
// A missing or corrupt file is treated as empty and recreated.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a store backed by the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Save upserts a record, stamping UpdatedAt (and CreatedAt when new).
func (s *Store) Save(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()

	now := time.Now().UTC()
	rec.UpdatedAt = now

	replaced := false
	for i, existing := range records {
		if existing.InterviewID == rec.InterviewID {
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = existing.CreatedAt
			}
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		records = append(records, rec)
	}

	return s.persist(records)
}

// Get returns the record for the given interview ID, or false.
func (s *Store) Get(interviewID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.load() {
		if rec.InterviewID == interviewID {
			return rec, true
		}
	}
	return Record{}, false
}

// ListAll returns every record in insertion order.
func (s *Store) ListAll() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// ListActive returns the records the inbound-email poller should
// still watch.
func (s *Store) ListActive() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []Record
	for _, rec := range s.load() {
		if rec.Active() {
			active = append(active, rec)
		}
	}
	return active
}

// UpdateStatus sets the status of an existing record. Unknown IDs are
// ignored: the snapshot may simply not have been written yet.
func (s *Store) UpdateStatus(interviewID string, status negotiation.Status) error {
	return s.update(interviewID, func(rec *Record) {
		rec.Status = status
	})
}

// SetCalendarInfo records the created calendar event on the snapshot.
func (s *Store) SetCalendarInfo(interviewID, eventID, meetLink string) error {
	return s.update(interviewID, func(rec *Record) {
		rec.CalendarEventID = eventID
		rec.MeetLink = meetLink
	})
}

// SetScheduledSlot records the final agreed slot.
func (s *Store) SetScheduledSlot(interviewID string, slot negotiation.Slot) error {
	return s.update(interviewID, func(rec *Record) {
		rec.ScheduledSlot = &slot
	})
}

// Remove deletes a record. Removing an unknown ID is not an error.
func (s *Store) Remove(interviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()
	kept := records[:0]
	for _, rec := range records {
		if rec.InterviewID != interviewID {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return s.persist(kept)
}

func (s *Store) update(interviewID string, mutate func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.load()
	for i := range records {
		if records[i].InterviewID == interviewID {
			mutate(&records[i])
			records[i].UpdatedAt = time.Now().UTC()
			return s.persist(records)
		}
	}
	return nil
}

// load reads the file, self-healing on any error: missing or corrupt
// content becomes an empty store.
func (s *Store) load() []Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil
	}
	return records
}

// persist writes atomically via a temp file rename so a crash never
// leaves a half-written store.
func (s *Store) persist(records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".interviews-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
