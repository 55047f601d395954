package mq

import (
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "events"

	// HeaderTraceID carries the originating request's trace id across the broker.
	HeaderTraceID = "x-trace-id"

	connectionName = "taskboard"
	heartbeat      = 10 * time.Second
)

// ErrNotConnected is reported when the broker connection has been lost.
var ErrNotConnected = errors.New("rabbitmq connection is closed")

// NewConnection dials the broker with a heartbeat and a client-provided name, so the
// connection shows up as "taskboard" in the management UI.
func NewConnection(url string) (*amqp091.Connection, error) {
	props := amqp091.NewConnectionProperties()
	props.SetClientConnectionName(connectionName)
	conn, err := amqp091.DialConfig(url, amqp091.Config{
		Heartbeat:  heartbeat,
		Locale:     "en_US",
		Properties: props,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// DeclareExchange declares the events exchange.
func DeclareExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
