package handler

import (
	"github.com/google/uuid"
	"github.com/savor-pos/api/internal/notify"
	"github.com/savor-pos/api/internal/ws"
)

// Notifier fans an event out to the websocket hub and the AMQP publisher.
// Either side may be nil; delivery is best effort and never fails a request.
type Notifier struct {
	Hub    *ws.Hub
	Events *notify.Publisher
}

func (n *Notifier) Notify(branchID uuid.UUID, eventType string, payload interface{}) {
	if n == nil {
		return
	}
	if n.Hub != nil {
		n.Hub.Notify(branchID, eventType, payload)
	}
	n.Events.Publish(branchID, eventType, payload)
}
