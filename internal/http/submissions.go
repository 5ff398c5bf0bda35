package http

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

// submission is one raw form submission, kept for audit even when the
// workflow signal fails.
type submission struct {
	Token       string             `json:"token"`
	Interviewer string             `json:"interviewer"`
	Slots       []negotiation.Slot `json:"slots"`
	SubmittedAt time.Time          `json:"submittedAt"`
}

// submissionLog appends submissions to a flat JSON array on disk.
type submissionLog struct {
	mu   sync.Mutex
	path string
}

func newSubmissionLog(path string) *submissionLog {
	return &submissionLog{path: path}
}

func (l *submissionLog) append(s submission) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []submission
	if raw, err := os.ReadFile(l.path); err == nil {
		// A corrupt audit file is restarted rather than blocking intake.
		_ = json.Unmarshal(raw, &entries)
	}
	entries = append(entries, s)

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal submissions: %w", err)
	}
	if err := os.WriteFile(l.path, raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", l.path, err)
	}
	return nil
}
