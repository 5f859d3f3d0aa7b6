package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusEmployeeAccepted, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusClosed, false},

		{StatusEmployeeAccepted, StatusInProgress, true},
		{StatusEmployeeAccepted, StatusCancelled, true},
		{StatusEmployeeAccepted, StatusPendingCompletion, false},

		{StatusInProgress, StatusPendingCompletion, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusClosed, false},

		{StatusPendingCompletion, StatusClosed, true},
		{StatusPendingCompletion, StatusInProgress, true},
		{StatusPendingCompletion, StatusCancelled, false},

		// closed and cancelled are terminal.
		{StatusClosed, StatusInProgress, false},
		{StatusClosed, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusClosed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCancellable(t *testing.T) {
	assert.True(t, StatusPending.Cancellable())
	assert.True(t, StatusEmployeeAccepted.Cancellable())
	assert.True(t, StatusInProgress.Cancellable())
	assert.False(t, StatusPendingCompletion.Cancellable())
	assert.False(t, StatusClosed.Cancellable())
	assert.False(t, StatusCancelled.Cancellable())
}

func TestSplitAmount(t *testing.T) {
	cases := []struct {
		amount, commission, earnings string
	}{
		{"25.00", "2.50", "22.50"},
		{"100.00", "10.00", "90.00"},
		{"9.99", "1.00", "8.99"},
		{"0.01", "0.00", "0.01"},
		{"33.33", "3.33", "30.00"},
	}

	for _, tc := range cases {
		amount := decimal.RequireFromString(tc.amount)
		commission, earnings := SplitAmount(amount)

		assert.Equal(t, tc.commission, commission.StringFixed(2), "commission of %s", tc.amount)
		assert.Equal(t, tc.earnings, earnings.StringFixed(2), "earnings of %s", tc.amount)
		assert.True(t, commission.Add(earnings).Equal(amount), "split of %s must sum back", tc.amount)
	}
}
