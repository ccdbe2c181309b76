package rules

import "backoffice/internal/models"

// OrderRef is the slice of an order the deletion guard needs: enough to
// classify it and to render a blocking list in the admin UI.
type OrderRef struct {
	Code   string        `json:"code"`
	Status models.Status `json:"status"`
	Total  float64       `json:"total"`
}

// DeletionOutcome classifies a deletion attempt.
type DeletionOutcome string

const (
	// DeletionAllowed means nothing references the entity.
	DeletionAllowed DeletionOutcome = "allowed"
	// DeletionAllowedWithHistory means only delivered or cancelled orders
	// reference the entity; deletion may proceed after explicit confirmation.
	DeletionAllowedWithHistory DeletionOutcome = "allowed_with_history"
	// DeletionBlocked means at least one in-flight order references the
	// entity; deletion must not proceed.
	DeletionBlocked DeletionOutcome = "blocked"
)

// DeletionDecision is the guard's verdict for one product or account.
type DeletionDecision struct {
	Outcome DeletionOutcome
	// Blocking lists the active orders that prevent deletion. Empty unless
	// Outcome is DeletionBlocked.
	Blocking []OrderRef
	// HistoricalCount is the number of terminal orders that will keep a
	// dangling (but readable, thanks to item snapshots) reference after a
	// soft delete.
	HistoricalCount int
}

// EvaluateDeletion decides whether an entity referenced by the given orders
// may be deleted. A single active order blocks regardless of how much
// terminal history exists. The guard never deletes anything itself, and the
// deletion it approves is always a soft one: historical orders keep their
// weak reference to the entity.
func EvaluateDeletion(refs []OrderRef) DeletionDecision {
	var blocking []OrderRef
	historical := 0

	for _, ref := range refs {
		if ActiveStatus(ref.Status) {
			blocking = append(blocking, ref)
		} else {
			historical++
		}
	}

	switch {
	case len(blocking) > 0:
		return DeletionDecision{Outcome: DeletionBlocked, Blocking: blocking, HistoricalCount: historical}
	case historical > 0:
		return DeletionDecision{Outcome: DeletionAllowedWithHistory, HistoricalCount: historical}
	default:
		return DeletionDecision{Outcome: DeletionAllowed}
	}
}
