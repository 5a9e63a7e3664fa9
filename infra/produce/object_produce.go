package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ObjectExchange = "register.exchange"

	// ObjectEventQueue carries object lifecycle events for the host
	// platform (search indexing, webhooks, dashboard refresh).
	ObjectEventQueue      = "register.object_event"
	ObjectEventRoutingKey = "register.object_event"
)

// ObjectEventMessage is published on every object mutation.
type ObjectEventMessage struct {
	Action     string `json:"action"` // create, update, delete, restore, revert, publish, depublish
	ObjectUUID string `json:"object_uuid"`
	RegisterID uint64 `json:"register_id"`
	SchemaID   uint64 `json:"schema_id"`
	Version    string `json:"version"`
	UserID     string `json:"user_id"`
	Timestamp  int64  `json:"timestamp"`
}

// ObjectProduceService publishes object lifecycle events.
type ObjectProduceService struct {
	channel *amqp.Channel
}

func InitObjectProduceService(channel *amqp.Channel) *ObjectProduceService {
	service := &ObjectProduceService{
		channel: channel,
	}

	err := channel.ExchangeDeclare(
		ObjectExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Object exchange: " + err.Error())
	}

	_, err = channel.QueueDeclare(
		ObjectEventQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		panic("Failed to declare Object event queue: " + err.Error())
	}

	err = channel.QueueBind(
		ObjectEventQueue,
		ObjectEventRoutingKey,
		ObjectExchange,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to bind Object event queue: " + err.Error())
	}

	return service
}

// PublishObjectEvent publishes one lifecycle event.
func (s *ObjectProduceService) PublishObjectEvent(ctx context.Context, msg ObjectEventMessage) error {
	msg.Timestamp = time.Now().Unix()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.channel.PublishWithContext(
		ctx,
		ObjectExchange,
		ObjectEventRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
