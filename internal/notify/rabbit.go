// Package notify publishes order and billing events to RabbitMQ for
// downstream consumers (printers, analytics). Publishing is optional and
// best effort: the API never fails a request because the broker is down.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName   = "pos.events"
	publishTimeout = 5 * time.Second
)

// Publisher sends branch-scoped events to the pos.events topic exchange.
// A nil *Publisher is valid and drops everything.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Connect dials the broker and declares the events exchange. Returns nil
// (and no error) when url is empty so deployments without RabbitMQ just
// skip event publishing.
func Connect(url string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: channel}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// envelope is the wire format on the exchange.
type envelope struct {
	Type     string      `json:"type"`
	BranchID uuid.UUID   `json:"branch_id"`
	At       time.Time   `json:"at"`
	Payload  interface{} `json:"payload"`
}

// Publish sends one event with routing key <eventType> (e.g. order.created).
// Failures are logged and swallowed.
func (p *Publisher) Publish(branchID uuid.UUID, eventType string, payload interface{}) {
	if p == nil {
		return
	}

	body, err := json.Marshal(envelope{
		Type:     eventType,
		BranchID: branchID,
		At:       time.Now().UTC(),
		Payload:  payload,
	})
	if err != nil {
		log.Printf("ERROR: marshal event %s: %v", eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		exchangeName, // exchange
		eventType,    // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		log.Printf("ERROR: publish event %s: %v", eventType, err)
	}
}
