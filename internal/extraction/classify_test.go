package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantType       ResponseType
		wantConfidence float64
	}{
		{"exact accept", "accept", ResponseAccept, 1.0},
		{"exact accepted", "Accepted", ResponseAccept, 1.0},
		{"exact yes", "YES", ResponseAccept, 1.0},
		{"exact reject", "reject", ResponseReject, 1.0},
		{"exact no", "no", ResponseReject, 1.0},

		{"accept prefix", "Accept, see you then", ResponseAccept, 0.95},
		{"sounds good prefix", "Sounds good to me!", ResponseAccept, 0.95},
		{"okay prefix", "Okay that works", ResponseAccept, 0.95},
		{"declined prefix", "Declined, I have a conflict", ResponseReject, 0.95},
		{"sorry prefix", "Sorry, something came up", ResponseReject, 0.95},

		{"cant make it", "Sorry, I can't make it", ResponseReject, 0.9},
		{"not available", "I am not available that day", ResponseReject, 0.9},
		{"busy", "I'm busy during that window", ResponseReject, 0.9},

		{"loose accept", "That slot works for me", ResponseAccept, 0.8},
		{"decline mid sentence", "I have to decline this one I think", ResponseReject, 0.9},

		{"reschedule beats everything", "Can we reschedule to next week?", ResponseUnknown, 0.3},
		{"please reschedule", "please reschedule, yes I know it's late notice", ResponseUnknown, 0.3},

		{"no signal", "see attachment", ResponseUnknown, 0.0},
		{"empty", "", ResponseUnknown, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			assert.Equal(t, tt.wantType, got.Type)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 0.001)
		})
	}
}

func TestClassifyUsesFirstMeaningfulLine(t *testing.T) {
	text := "ACCEPT\n\nOn Mon, Aug 4, 2025 Scheduler wrote:\n> Please reply with ACCEPT or REJECT"

	got := Classify(text)
	assert.Equal(t, ResponseAccept, got.Type)
	assert.GreaterOrEqual(t, got.Confidence, 0.95)
}

func TestClassifyQuotedRejectIsNotNegative(t *testing.T) {
	// The REJECT keyword lives only in the quoted template, which the
	// cleaner strips before analysis.
	text := "yes\n> - REJECT to decline"

	got := Classify(text)
	assert.Equal(t, ResponseAccept, got.Type)
}
