package rules_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/models"
	"backoffice/internal/rules"
)

var allStatuses = []models.Status{
	models.StatusPending,
	models.StatusProcessing,
	models.StatusShipped,
	models.StatusDelivered,
	models.StatusCancelled,
}

func TestCanTransitionExhaustive(t *testing.T) {
	legal := map[[2]models.Status]bool{
		{models.StatusPending, models.StatusProcessing}:  true,
		{models.StatusProcessing, models.StatusShipped}:  true,
		{models.StatusShipped, models.StatusDelivered}:   true,
		{models.StatusPending, models.StatusCancelled}:   true,
		{models.StatusProcessing, models.StatusCancelled}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[[2]models.Status{from, to}]
			assert.Equal(t, want, rules.CanTransition(from, to), "transition %s -> %s", from, to)
		}
	}
}

func TestCanTransitionRejectsUnknownStatuses(t *testing.T) {
	assert.False(t, rules.CanTransition("draft", models.StatusProcessing))
	assert.False(t, rules.CanTransition(models.StatusPending, "archived"))
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, from := range []models.Status{models.StatusDelivered, models.StatusCancelled} {
		require.True(t, rules.Terminal(from))
		for _, to := range allStatuses {
			assert.False(t, rules.CanTransition(from, to), "terminal %s must not reach %s", from, to)
		}
	}
}

func TestActiveStatusPartition(t *testing.T) {
	for _, s := range allStatuses {
		assert.Equal(t, !rules.Terminal(s), rules.ActiveStatus(s), "status %s", s)
	}
}

func TestTransitionUpdatesOrder(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	order := models.Order{
		Code:            "ORD-000042",
		Status:          models.StatusPending,
		CreatedAt:       created,
		StatusChangedAt: created,
	}

	updated, err := rules.Transition(order, models.StatusProcessing, "picked by warehouse", "ops@example.com", now)
	require.NoError(t, err)

	assert.Equal(t, models.StatusProcessing, updated.Status)
	assert.Equal(t, now, updated.StatusChangedAt)
	require.Len(t, updated.StatusNotes, 1)
	assert.Equal(t, models.StatusPending, updated.StatusNotes[0].From)
	assert.Equal(t, models.StatusProcessing, updated.StatusNotes[0].To)
	assert.Equal(t, "picked by warehouse", updated.StatusNotes[0].Note)
	assert.Equal(t, "ops@example.com", updated.StatusNotes[0].Actor)

	// The input snapshot must stay untouched.
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Empty(t, order.StatusNotes)
}

func TestTransitionWithoutNoteAppendsNothing(t *testing.T) {
	order := models.Order{Status: models.StatusShipped}

	updated, err := rules.Transition(order, models.StatusDelivered, "", "ops@example.com", time.Now())
	require.NoError(t, err)
	assert.Empty(t, updated.StatusNotes)
}

func TestTransitionRejectsSkippingStates(t *testing.T) {
	order := models.Order{Status: models.StatusPending}

	_, err := rules.Transition(order, models.StatusDelivered, "", "", time.Now())
	require.Error(t, err)

	var illegal *rules.IllegalTransitionError
	require.True(t, errors.As(err, &illegal))
	assert.Equal(t, models.StatusPending, illegal.From)
	assert.Equal(t, models.StatusDelivered, illegal.To)
}

func TestTransitionIgnoresPaymentStatus(t *testing.T) {
	// Shipping an unpaid order is legal at this layer; holding shipments
	// until payment settles is a policy for the caller.
	order := models.Order{Status: models.StatusProcessing, PaymentStatus: models.PaymentUnpaid}

	updated, err := rules.Transition(order, models.StatusShipped, "", "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, updated.Status)
	assert.Equal(t, models.PaymentUnpaid, updated.PaymentStatus)
}
