package scoring

import (
	"testing"
	"time"

	"etf-advisor/pkg/logger"
	"etf-advisor/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return NewScorer(log)
}

// Monday 10:00 New York time, regular trading hours.
func mondayMarketOpen() time.Time {
	return time.Date(2025, 6, 2, 10, 0, 0, 0, utils.GetMarketTimeLocation())
}

// Saturday noon New York time.
func saturdayNoon() time.Time {
	return time.Date(2025, 6, 7, 12, 0, 0, 0, utils.GetMarketTimeLocation())
}

// Tuesday 20:00 New York time, outside trading hours.
func weekdayEvening() time.Time {
	return time.Date(2025, 6, 3, 20, 0, 0, 0, utils.GetMarketTimeLocation())
}

func TestScorer_UrgencyBuckets(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "escalation dominant",
			text: "This is urgent, act immediately before conditions worsen",
			want: 1.0,
		},
		{
			name: "balanced escalation and deescalation",
			text: "A warning sign appeared but conditions remain calm",
			want: 0.6,
		},
		{
			name: "no signal",
			text: "Continue the plan for this month",
			want: 0.5,
		},
		{
			name: "deescalation dominant",
			text: "Conditions are stable and calm, no action needed",
			want: 0.2,
		},
	}

	s := newTestScorer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Evaluate(tt.text, weekdayEvening())
			assert.Equal(t, tt.want, got.Urgency, "urgency mismatch")
		})
	}
}

func TestScorer_RecommendationBuckets(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "strong verbs stack to top bucket",
			text: "Sell the bonds and buy the index",
			want: 1.0,
		},
		{
			name: "single strong verb",
			text: "You should rebalance this quarter",
			want: 0.8,
		},
		{
			name: "soft suggestion only",
			text: "You might review the allocation",
			want: 0.5,
		},
		{
			name: "hold language only",
			text: "Hold the current position",
			want: 0.2,
		},
	}

	s := newTestScorer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Evaluate(tt.text, weekdayEvening())
			assert.Equal(t, tt.want, got.Recommendation, "recommendation mismatch")
		})
	}
}

func TestScorer_AmountBands(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{
			name: "millions",
			text: "The fund moved $2.5 million into treasuries",
			want: 1.0,
		},
		{
			name: "hundreds of thousands",
			text: "Exposure of 200k remains",
			want: 0.8,
		},
		{
			name: "tens of thousands",
			text: "A 50k allocation",
			want: 0.6,
		},
		{
			name: "thousands with denomination",
			text: "Invest 1,200 dollars monthly",
			want: 0.4,
		},
		{
			name: "small dollar amount",
			text: "It costs $500 per contract",
			want: 0.3,
		},
		{
			name: "no amounts",
			text: "No numbers here at all",
			want: 0.2,
		},
	}

	s := newTestScorer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Evaluate(tt.text, weekdayEvening())
			assert.Equal(t, tt.want, got.Amount, "amount mismatch")
		})
	}
}

func TestScorer_HoldAdviceStaysQuiet(t *testing.T) {
	s := newTestScorer(t)

	got := s.Evaluate("hold position", mondayMarketOpen())

	assert.Equal(t, 0.5, got.Urgency, "urgency mismatch")
	assert.Equal(t, 0.2, got.Recommendation, "recommendation mismatch")
	assert.InDelta(t, 0.305, got.Composite, 1e-9, "composite mismatch")
	// base 0.7 - 0.3*0.5 urgency relief - 0.05 market hours
	assert.InDelta(t, 0.5, got.Threshold, 1e-9, "threshold mismatch")
	assert.False(t, got.Notify, "hold advice must not notify")
	assert.False(t, got.FailedOpen)
}

func TestScorer_UrgentSellNotifies(t *testing.T) {
	s := newTestScorer(t)

	text := "Urgent: sell immediately. The market is volatile and crash risk is rising."
	got := s.Evaluate(text, mondayMarketOpen())

	assert.Equal(t, 1.0, got.Urgency, "urgency mismatch")
	assert.GreaterOrEqual(t, got.Recommendation, 0.8, "recommendation mismatch")
	// relief overshoots, threshold clamps at the floor
	assert.InDelta(t, 0.3, got.Threshold, 1e-9, "threshold mismatch")
	assert.True(t, got.Notify, "urgent sell advice must notify")
}

func TestScorer_ThresholdWeekendIncrease(t *testing.T) {
	s := newTestScorer(t)

	got := s.Evaluate("nothing remarkable happened", saturdayNoon())

	// base 0.7 - 0.3*0.5 + 0.1 weekend
	assert.InDelta(t, 0.65, got.Threshold, 1e-9, "threshold mismatch")
}

func TestScorer_Determinism(t *testing.T) {
	s := newTestScorer(t)
	at := mondayMarketOpen()
	text := "Consider a gradual shift, the market shows volatility around earnings"

	first := s.Evaluate(text, at)
	second := s.Evaluate(text, at)

	assert.Equal(t, first, second, "identical text and time must score identically")
}

func TestScorer_Monotonicity(t *testing.T) {
	baseTexts := []string{
		"hold position",
		"Conditions are stable and calm, no action needed",
		"You might review the allocation around earnings",
		"nothing remarkable happened",
	}
	additions := []string{
		" urgent",
		" sell immediately",
		" critical warning",
		" rebalance now, this is urgent",
	}

	s := newTestScorer(t)
	at := weekdayEvening()

	for _, base := range baseTexts {
		prev := s.Evaluate(base, at)
		text := base
		for _, add := range additions {
			text += add
			got := s.Evaluate(text, at)
			assert.GreaterOrEqual(t, got.Composite, prev.Composite,
				"adding urgency or action vocabulary must never lower the composite: %q", text)
			prev = got
		}
	}
}

func TestScorer_FailsOpenOnPanic(t *testing.T) {
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	// A matcher with a nil regexp panics during evaluation.
	s := NewScorer(log)
	s.escalation = append(s.escalation, termMatcher{re: nil, weight: 1})

	got := s.Evaluate("anything", weekdayEvening())

	assert.True(t, got.Notify, "failure must not suppress notifications")
	assert.True(t, got.FailedOpen)
}
