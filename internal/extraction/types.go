// Package extraction turns free-form email text into structured
// scheduling data: a best-effort time slot and an accept/reject
// classification. Slot extraction runs a ranked chain of strategies
// (LLM, rule-based heuristics, basic patterns) where the first
// success wins; the chain never fails, ambiguity resolves to
// documented defaults.
package extraction

import (
	"context"
	"time"

	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
)

// ResponseType is the classified intent of a reply.
type ResponseType string

const (
	ResponseAccept  ResponseType = "ACCEPT"
	ResponseReject  ResponseType = "REJECT"
	ResponseUnknown ResponseType = "UNKNOWN"
)

// Classification is an intent with a confidence score in [0,1].
type Classification struct {
	Type       ResponseType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// Snapshot carries negotiation context into extraction so relative
// phrases ("a day before", "after that") can resolve against the
// currently proposed slot.
type Snapshot struct {
	Candidate          string `json:"candidate,omitempty"`
	Interviewer        string `json:"interviewer,omitempty"`
	Position           string `json:"position,omitempty"`
	ScheduledDate      string `json:"scheduledDate,omitempty"`
	ScheduledStartTime string `json:"scheduledStartTime,omitempty"`
	ScheduledEndTime   string `json:"scheduledEndTime,omitempty"`
}

// Config holds LLM strategy configuration. When Enabled is false the
// chain starts at the rule-based heuristics.
type Config struct {
	Enabled     bool          `json:"enabled"`
	BaseURL     string        `json:"base_url,omitempty"`
	Model       string        `json:"model,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
	MaxAttempts int           `json:"max_attempts,omitempty"`
}

// strategy is one slot extraction attempt. ok=false means the
// strategy could not produce a result and the next one runs.
type strategy interface {
	name() string
	extract(ctx context.Context, text string, snap *Snapshot, now time.Time) (negotiation.Slot, bool)
}

// Extractor runs the ranked strategy chain.
type Extractor struct {
	strategies []strategy

	// Now is the clock used for relative-date resolution. Tests
	// override it for deterministic output.
	Now func() time.Time
}

// New builds the chain: LLM (when enabled), then heuristics, then
// basic patterns. The basic strategy always succeeds, so Extract
// never fails.
func New(cfg Config) *Extractor {
	var strategies []strategy
	if cfg.Enabled {
		strategies = append(strategies, newOllamaStrategy(cfg))
	}
	strategies = append(strategies, &heuristicStrategy{}, &basicStrategy{})
	return &Extractor{
		strategies: strategies,
		Now:        time.Now,
	}
}

// Extract returns the best-effort slot for the given text. The text
// is cleaned of quoted-thread boilerplate before any strategy runs.
func (e *Extractor) Extract(ctx context.Context, text string, snap *Snapshot) negotiation.Slot {
	cleaned := CleanEmailBody(text)
	now := e.Now()

	for _, s := range e.strategies {
		if slot, ok := s.extract(ctx, cleaned, snap, now); ok {
			return slot
		}
	}

	// Unreachable: basicStrategy always succeeds.
	return (&basicStrategy{}).fallback(now)
}
