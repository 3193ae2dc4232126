package service

import (
	"github.com/savor-pos/api/internal/enum"
	"github.com/savor-pos/api/internal/fault"
)

// allowedTransitions is the order lifecycle. Billing states are only entered
// through the billing service; the PATCH endpoint additionally restricts
// which targets a client may request (see manualTargets).
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:       {enum.OrderStatusRunning, enum.OrderStatusCancelled},
	enum.OrderStatusRunning:       {enum.OrderStatusBillGenerated, enum.OrderStatusCredit, enum.OrderStatusCancelled},
	enum.OrderStatusBillGenerated: {enum.OrderStatusCompleted},
	enum.OrderStatusCredit:        {},
	enum.OrderStatusCompleted:     {},
	enum.OrderStatusCancelled:     {},
}

// manualTargets are the only statuses a client may request directly.
var manualTargets = map[string]bool{
	enum.OrderStatusRunning:   true,
	enum.OrderStatusCancelled: true,
}

func canTransition(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CheckTransition validates an order status change against the lifecycle.
func CheckTransition(from, to string) error {
	if !enum.ValidOrderStatus(to) {
		return fault.New(fault.Validation, "unknown order status %q", to)
	}
	if !canTransition(from, to) {
		return fault.New(fault.InvalidState, "cannot move order from %s to %s", from, to)
	}
	return nil
}

// CheckManualTransition additionally rejects targets reserved for billing.
func CheckManualTransition(from, to string) error {
	if err := CheckTransition(from, to); err != nil {
		return err
	}
	if !manualTargets[to] {
		return fault.New(fault.Validation, "status %s cannot be set directly", to)
	}
	return nil
}

// IsTerminalOrderStatus reports whether no further transitions exist.
func IsTerminalOrderStatus(status string) bool {
	return len(allowedTransitions[status]) == 0
}

// OrderEditable reports whether items may still be added or changed.
// Once a bill exists the order contents are frozen.
func OrderEditable(status string) bool {
	return status == enum.OrderStatusPending || status == enum.OrderStatusRunning
}

// itemSequence is the strict kitchen progression for a single item.
var itemSequence = map[string]string{
	enum.ItemStatusPending:   enum.ItemStatusPreparing,
	enum.ItemStatusPreparing: enum.ItemStatusReady,
	enum.ItemStatusReady:     enum.ItemStatusCompleted,
}

// CheckItemTransition enforces the one-step kitchen sequence; items cannot
// skip ahead or move backwards.
func CheckItemTransition(from, to string) error {
	if !enum.ValidItemStatus(to) {
		return fault.New(fault.Validation, "unknown item status %q", to)
	}
	if itemSequence[from] != to {
		return fault.New(fault.InvalidState, "cannot move item from %s to %s", from, to)
	}
	return nil
}
