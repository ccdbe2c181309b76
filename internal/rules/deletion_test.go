package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/models"
	"backoffice/internal/rules"
)

func TestEvaluateDeletionNoReferences(t *testing.T) {
	decision := rules.EvaluateDeletion(nil)

	assert.Equal(t, rules.DeletionAllowed, decision.Outcome)
	assert.Empty(t, decision.Blocking)
	assert.Zero(t, decision.HistoricalCount)
}

func TestEvaluateDeletionOnlyTerminalHistory(t *testing.T) {
	decision := rules.EvaluateDeletion([]rules.OrderRef{
		{Code: "ORD-000001", Status: models.StatusDelivered, Total: 120},
		{Code: "ORD-000002", Status: models.StatusCancelled, Total: 80},
	})

	assert.Equal(t, rules.DeletionAllowedWithHistory, decision.Outcome)
	assert.Empty(t, decision.Blocking)
	assert.Equal(t, 2, decision.HistoricalCount)
}

func TestEvaluateDeletionSingleActiveOrderBlocks(t *testing.T) {
	// One shipped order dominates any amount of terminal history.
	decision := rules.EvaluateDeletion([]rules.OrderRef{
		{Code: "ORD-000010", Status: models.StatusShipped, Total: 300},
		{Code: "ORD-000011", Status: models.StatusDelivered, Total: 50},
		{Code: "ORD-000012", Status: models.StatusDelivered, Total: 75},
	})

	assert.Equal(t, rules.DeletionBlocked, decision.Outcome)
	require.Len(t, decision.Blocking, 1)
	assert.Equal(t, "ORD-000010", decision.Blocking[0].Code)
	assert.Equal(t, models.StatusShipped, decision.Blocking[0].Status)
	assert.Equal(t, 2, decision.HistoricalCount)
}

func TestEvaluateDeletionBlockedPerStatus(t *testing.T) {
	tests := []struct {
		status models.Status
		want   rules.DeletionOutcome
	}{
		{models.StatusPending, rules.DeletionBlocked},
		{models.StatusProcessing, rules.DeletionBlocked},
		{models.StatusShipped, rules.DeletionBlocked},
		{models.StatusDelivered, rules.DeletionAllowedWithHistory},
		{models.StatusCancelled, rules.DeletionAllowedWithHistory},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			decision := rules.EvaluateDeletion([]rules.OrderRef{
				{Code: "ORD-000020", Status: tt.status},
			})
			assert.Equal(t, tt.want, decision.Outcome)
		})
	}
}

func TestEvaluateDeletionCollectsAllBlockingOrders(t *testing.T) {
	decision := rules.EvaluateDeletion([]rules.OrderRef{
		{Code: "ORD-000030", Status: models.StatusPending},
		{Code: "ORD-000031", Status: models.StatusProcessing},
		{Code: "ORD-000032", Status: models.StatusCancelled},
	})

	require.Equal(t, rules.DeletionBlocked, decision.Outcome)
	codes := []string{decision.Blocking[0].Code, decision.Blocking[1].Code}
	assert.Equal(t, []string{"ORD-000030", "ORD-000031"}, codes)
	assert.Equal(t, 1, decision.HistoricalCount)
}
