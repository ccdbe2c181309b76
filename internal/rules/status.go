// Package rules holds the pure decision logic behind the back-office:
// order status transitions, deletion guarding, and discount evaluation.
// Nothing in this package touches the database; callers fetch the records,
// invoke a rule against the snapshot, and persist the outcome themselves.
package rules

import (
	"fmt"
	"time"

	"backoffice/internal/models"
)

// nextStatus is the single-step success path. Skipping a step is illegal.
var nextStatus = map[models.Status]models.Status{
	models.StatusPending:    models.StatusProcessing,
	models.StatusProcessing: models.StatusShipped,
	models.StatusShipped:    models.StatusDelivered,
}

// cancellable lists the statuses an order may be cancelled from. Once the
// parcel is on the road, cancellation is no longer an admin action.
var cancellable = map[models.Status]bool{
	models.StatusPending:    true,
	models.StatusProcessing: true,
}

// ValidStatus reports whether s is part of the order status vocabulary.
func ValidStatus(s models.Status) bool {
	switch s {
	case models.StatusPending, models.StatusProcessing, models.StatusShipped,
		models.StatusDelivered, models.StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is legal from s.
func Terminal(s models.Status) bool {
	return s == models.StatusDelivered || s == models.StatusCancelled
}

// ActiveStatus reports whether s still counts as an in-flight order for the
// deletion guard: the order has not reached delivered or cancelled yet.
func ActiveStatus(s models.Status) bool {
	switch s {
	case models.StatusPending, models.StatusProcessing, models.StatusShipped:
		return true
	}
	return false
}

// CanTransition reports whether from → to is a legal single step: either the
// immediate successor on the success path, or a cancellation while the order
// is still pending or processing.
func CanTransition(from, to models.Status) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if to == models.StatusCancelled {
		return cancellable[from]
	}
	return nextStatus[from] == to
}

// IllegalTransitionError reports a rejected status change with both sides of
// the attempted transition so the caller can show a useful message.
type IllegalTransitionError struct {
	From models.Status
	To   models.Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition from %q to %q", e.From, e.To)
}

// Transition returns a copy of order moved to target, with StatusChangedAt
// set to now and an audit note appended when note is non-empty. The stored
// order is untouched; persisting the result is the caller's job.
//
// Payment status is deliberately not consulted here: whether an unpaid order
// may be shipped is a policy for the calling layer.
func Transition(order models.Order, target models.Status, note, actor string, now time.Time) (models.Order, error) {
	if !CanTransition(order.Status, target) {
		return models.Order{}, &IllegalTransitionError{From: order.Status, To: target}
	}

	updated := order
	updated.Status = target
	updated.StatusChangedAt = now

	if note != "" {
		notes := make([]models.StatusNote, 0, len(order.StatusNotes)+1)
		notes = append(notes, order.StatusNotes...)
		notes = append(notes, models.StatusNote{
			From:  order.Status,
			To:    target,
			Note:  note,
			Actor: actor,
			At:    now,
		})
		updated.StatusNotes = notes
	}

	return updated, nil
}
