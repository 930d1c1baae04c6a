// internal/events/publisher.go
package events

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/pocamarket/ceg-backend/internal/config"
)

// Event is the envelope handed to the external notifier. Delivery, retry
// and read tracking are the notifier's concern.
type Event struct {
	Type       string                 `json:"type"`
	ResourceID string                 `json:"resource_id"`
	UserID     string                 `json:"user_id,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Occurred   time.Time              `json:"occurred"`
}

type Publisher interface {
	Publish(event Event) error
	Close()
}

type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewRabbitMQPublisher(cfg config.BrokerConfig) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		cfg.EventExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  ch,
		exchange: cfg.EventExchange,
	}, nil
}

func (p *RabbitMQPublisher) Publish(event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.channel.Publish(
		p.exchange,
		event.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Occurred,
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

func (p *RabbitMQPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopPublisher backs tests and broker-less deployments.
type NoopPublisher struct{}

func (NoopPublisher) Publish(event Event) error {
	logrus.WithField("type", event.Type).Debug("event dropped (no broker configured)")
	return nil
}

func (NoopPublisher) Close() {}
