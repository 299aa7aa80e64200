package mq_client

import (
	"github.com/streadway/amqp"
)

var AMQPChannel *amqp.Channel
var Connection *amqp.Connection

func Connect() error {
	cn, err := CreateAMQP()
	if err != nil {
		return err
	}

	Connection = cn

	return nil
}

func GetChannel() *amqp.Channel {
	if AMQPChannel != nil {
		return AMQPChannel
	}

	channel, _ := Connection.Channel()
	AMQPChannel = channel

	return AMQPChannel
}

// Publish declares the exchange and sends one persistent message.
// Delivery is at-least-once; consumers must tolerate replays.
func Publish(eid string, queue Queue, payload []byte, routing_key string) error {
	exchangeName, exchangeKind := GetExchange(eid)

	err := GetChannel().ExchangeDeclare(exchangeName, exchangeKind, queue.Durable, false, false, false, nil)
	if err != nil {
		return err
	}

	return GetChannel().Publish(
		exchangeName,
		routing_key,
		false,
		false,
		amqp.Publishing{
			Headers:      amqp.Table{},
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
			Priority:     0,
		},
	)
}

// Enqueue routes a payload through the binding named by id.
func Enqueue(id string, payload []byte) error {
	eid := GetBindingExchangeId(id)
	routing_key := GetRoutingKey(id)
	queue := GetBindingQueue(id)

	return Publish(eid, queue, payload, routing_key)
}
