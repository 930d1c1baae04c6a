// internal/models/common_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeGroupPurchaseType(t *testing.T) {
	assert.Equal(t, GroupPurchaseTypeNational, NormalizeGroupPurchaseType("국내"))
	assert.Equal(t, GroupPurchaseTypeInternational, NormalizeGroupPurchaseType("해외"))

	// Canonical values pass through.
	assert.Equal(t, GroupPurchaseTypeNational, NormalizeGroupPurchaseType("national"))

	// Unknown input passes through so validation can produce a useful error.
	unknown := NormalizeGroupPurchaseType("overseas")
	assert.Equal(t, GroupPurchaseType("overseas"), unknown)
	assert.False(t, unknown.Valid())
}

func TestNormalizeGroupPurchaseStatus(t *testing.T) {
	cases := map[string]GroupPurchaseStatus{
		"진행중":    GroupPurchaseStatusOpen,
		"마감":     GroupPurchaseStatusClosed,
		"준비중":    GroupPurchaseStatusProcessing,
		"완료":     GroupPurchaseStatusFinished,
		"취소":     GroupPurchaseStatusCanceled,
		"open":   GroupPurchaseStatusOpen,
		"closed": GroupPurchaseStatusClosed,
	}

	for input, want := range cases {
		assert.Equal(t, want, NormalizeGroupPurchaseStatus(input), "input %q", input)
	}

	assert.False(t, NormalizeGroupPurchaseStatus("paused").Valid())
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusConfirmed))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCanceled))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusPaid))
	assert.True(t, OrderStatusConfirmed.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusPaid.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))

	// No skipping ahead.
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusDelivered))
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusShipped))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusDelivered))

	// No going backwards.
	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusPending))
	assert.False(t, OrderStatusPaid.CanTransitionTo(OrderStatusConfirmed))

	// Terminal states.
	for _, next := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusPaid,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCanceled,
	} {
		assert.False(t, OrderStatusDelivered.CanTransitionTo(next))
		assert.False(t, OrderStatusCanceled.CanTransitionTo(next))
	}
}

func TestInventoryItemOrderable(t *testing.T) {
	item := InventoryItem{Status: ItemStatusApproved, Available: true, Quantity: 1}
	assert.True(t, item.Orderable())

	pending := item
	pending.Status = ItemStatusPending
	assert.False(t, pending.Orderable())

	unavailable := item
	unavailable.Available = false
	assert.False(t, unavailable.Orderable())

	soldOut := item
	soldOut.Quantity = 0
	assert.False(t, soldOut.Orderable())
}
