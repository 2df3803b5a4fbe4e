package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"created to checking", StatusCreated, StatusCheckingAvailability, true},
		{"checking to confirmed", StatusCheckingAvailability, StatusConfirmed, true},
		{"checking to rejected", StatusCheckingAvailability, StatusRejected, true},
		{"created straight to confirmed", StatusCreated, StatusConfirmed, false},
		{"created straight to rejected", StatusCreated, StatusRejected, false},
		{"confirmed is terminal", StatusConfirmed, StatusRejected, false},
		{"rejected is terminal", StatusRejected, StatusConfirmed, false},
		{"no going back to created", StatusCheckingAvailability, StatusCreated, false},
		{"confirmed back to checking", StatusConfirmed, StatusCheckingAvailability, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, StatusCreated.Terminal())
	assert.False(t, StatusCheckingAvailability.Terminal())
	assert.True(t, StatusConfirmed.Terminal())
	assert.True(t, StatusRejected.Terminal())
}
