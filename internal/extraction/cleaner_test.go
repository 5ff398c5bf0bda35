package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanEmailBody(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain text untouched",
			raw:  "accept",
			want: "accept",
		},
		{
			name: "stops at quoted reply",
			raw:  "Sounds good, accept\n\nOn Mon, Aug 4, 2025 at 10:00 AM Scheduler wrote:\n> Please pick a slot",
			want: "Sounds good, accept",
		},
		{
			name: "drops header lines",
			raw:  "I can do 14:00\nFrom: scheduler@example.com\nSubject: Interview",
			want: "I can do 14:00",
		},
		{
			name: "drops angle quoted lines",
			raw:  "ACCEPT\n> Available slots:\n> 10:00-11:00",
			want: "ACCEPT",
		},
		{
			name: "drops sign offs and blank lines",
			raw:  "Let's do tomorrow\n\nBest regards,\nVinayak",
			want: "Let's do tomorrow Vinayak",
		},
		{
			name: "drops template chrome",
			raw:  "ACCEPT\nPlease reply with ACCEPT or REJECT\n- ACCEPT to confirm\n- REJECT to decline",
			want: "ACCEPT",
		},
		{
			name: "stops at scheduler template",
			raw:  "reject\nSent by the Interview Scheduler System",
			want: "reject",
		},
		{
			name: "collapses whitespace",
			raw:  "  next   week  \n  afternoon ",
			want: "next   week afternoon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanEmailBody(tt.raw))
		})
	}
}

func TestCleanEmailBodyIdempotent(t *testing.T) {
	inputs := []string{
		"accept",
		"Sounds good, accept\n\nOn Mon, Aug 4, 2025 at 10:00 AM Scheduler wrote:\n> Please pick a slot",
		"Can we reschedule to next week?\nThanks,\nVinayak",
		"Let's do 3-08-2025 1:00-2:00PM",
	}

	for _, raw := range inputs {
		once := CleanEmailBody(raw)
		assert.Equal(t, once, CleanEmailBody(once))
	}
}
