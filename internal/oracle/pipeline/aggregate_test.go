package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cointribute/internal/oracle/models"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name         string
		in           models.ScoreBreakdown
		wantScore    int
		wantApproved bool
	}{
		{
			name:         "base only below threshold",
			in:           models.ScoreBreakdown{BaseScore: 59},
			wantScore:    59,
			wantApproved: false,
		},
		{
			name:         "base only at threshold",
			in:           models.ScoreBreakdown{BaseScore: 60},
			wantScore:    60,
			wantApproved: true,
		},
		{
			name:         "base only above threshold",
			in:           models.ScoreBreakdown{BaseScore: 61},
			wantScore:    61,
			wantApproved: true,
		},
		{
			name: "presence and document lift a marginal base",
			in: models.ScoreBreakdown{
				BaseScore:     45,
				PresenceFound: true,
				DocumentValid: true,
			},
			wantScore:    65,
			wantApproved: true,
		},
		{
			name: "low invalid image and a flag drag a strong base to the line",
			in: models.ScoreBreakdown{
				BaseScore:  80,
				Flags:      []string{"unverifiable registration number"},
				ImageScore: 20,
			},
			wantScore:    60,
			wantApproved: true,
		},
		{
			name: "strong valid image earns the full bonus",
			in: models.ScoreBreakdown{
				BaseScore:  50,
				ImageScore: 75,
				ImageValid: true,
			},
			wantScore:    70,
			wantApproved: true,
		},
		{
			name: "strong image without validity gets the mid bonus only",
			in: models.ScoreBreakdown{
				BaseScore:  50,
				ImageScore: 75,
			},
			wantScore:    60,
			wantApproved: true,
		},
		{
			name: "mid image score",
			in: models.ScoreBreakdown{
				BaseScore:  40,
				ImageScore: 55,
				ImageValid: true,
			},
			wantScore:    50,
			wantApproved: false,
		},
		{
			name: "image between 30 and 50 is neutral",
			in: models.ScoreBreakdown{
				BaseScore:  40,
				ImageScore: 40,
			},
			wantScore:    40,
			wantApproved: false,
		},
		{
			name: "missing image stage leaves score untouched",
			in: models.ScoreBreakdown{
				BaseScore: 70,
			},
			wantScore:    70,
			wantApproved: true,
		},
		{
			name: "flags stack",
			in: models.ScoreBreakdown{
				BaseScore: 70,
				Flags:     []string{"a", "b", "c"},
			},
			wantScore:    55,
			wantApproved: false,
		},
		{
			name: "clamped at zero",
			in: models.ScoreBreakdown{
				BaseScore:  5,
				ImageScore: 10,
				Flags:      []string{"a", "b", "c"},
			},
			wantScore:    0,
			wantApproved: false,
		},
		{
			name: "clamped at one hundred",
			in: models.ScoreBreakdown{
				BaseScore:     95,
				PresenceFound: true,
				DocumentValid: true,
				ImageScore:    90,
				ImageValid:    true,
			},
			wantScore:    100,
			wantApproved: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.in)
			assert.Equal(t, tt.wantScore, got.FinalScore)
			assert.Equal(t, tt.wantApproved, got.Approved)
		})
	}
}

func TestAggregatePreservesStageFields(t *testing.T) {
	in := models.ScoreBreakdown{
		BaseScore:      45,
		Reasoning:      "decent",
		Flags:          []string{"x"},
		PresenceFound:  true,
		ImageScore:     55,
		ImageReasoning: "matches cause",
	}
	got := Aggregate(in)
	assert.Equal(t, in.BaseScore, got.BaseScore)
	assert.Equal(t, in.Reasoning, got.Reasoning)
	assert.Equal(t, in.Flags, got.Flags)
	assert.Equal(t, in.ImageReasoning, got.ImageReasoning)
}

func TestPresenceSignal(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Clean Water Foundation", true},
		{"GLOBAL RELIEF NETWORK", true},
		{"Community Fund for Schools", true},
		{"Hope Charity Initiative", true},
		{"Acme Corp", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, presenceSignal(tt.name), tt.name)
	}
}
