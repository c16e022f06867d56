package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const notifyQueueName = "cleaning.notify"

// Publisher pushes NotificationEvents onto the durable cleaning.notify
// queue. It satisfies the service layer's Dispatcher contract: every
// failure is logged and swallowed, because a dropped email must never
// undo a committed booking change. Each publish dials a fresh
// connection; notification volume is low enough that connection reuse
// is not worth the reconnect bookkeeping.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher targeting the given AMQP URL.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Notify publishes the event. Messages are marked persistent so they
// survive a broker restart.
func (p *Publisher) Notify(ctx context.Context, ev NotificationEvent) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("notify-publisher: dial failed: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("notify-publisher: channel open failed: %v", err)
		return
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so queued events survive restarts.
	if _, err := ch.QueueDeclare(notifyQueueName, true, false, false, false, nil); err != nil {
		log.Printf("notify-publisher: queue declare failed: %v", err)
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("notify-publisher: marshal event failed: %v", err)
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", notifyQueueName, false, false, pub); err != nil {
		log.Printf("notify-publisher: publish failed: %v", err)
	}
}
