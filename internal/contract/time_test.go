package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelativeTime(t *testing.T) {
	anchor := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"3 days ago", anchor.Add(-3 * 24 * time.Hour)},
		{"2 weeks ago", anchor.Add(-14 * 24 * time.Hour)},
		{"1 month ago", anchor.Add(-30 * 24 * time.Hour)},
		{"6 hours ago", anchor.Add(-6 * time.Hour)},
		{"0 days ago", anchor},
		{"  5 Minutes AGO ", anchor.Add(-5 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, anchor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRelativeTimeInvalid(t *testing.T) {
	anchor := time.Now()

	for _, input := range []string{"", "3 days", "soon ago", "-1 days ago", "3 fortnights ago", "three days ago"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRelativeTime(input, anchor)
			assert.Error(t, err)
		})
	}
}

func TestParseLookbackDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"7 days", 7 * 24 * time.Hour},
		{"1 week", 7 * 24 * time.Hour},
		{"6 months", 180 * 24 * time.Hour},
		{"1 year", 365 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLookbackDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, input := range []string{"", "days", "0 days", "7 parsecs"} {
		t.Run("invalid "+input, func(t *testing.T) {
			_, err := ParseLookbackDuration(input)
			assert.Error(t, err)
		})
	}
}
