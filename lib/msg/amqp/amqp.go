// Package amqp implements the message broker interface for AMQP compliant brokers (ie RabbitMQ)
package amqp

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/tarancss/dwallet/lib/msg"
)

// Exchange the wallet publishes events to.
const Exchange = "we"

// Amqp implements a connection to a broker and a channel for reuse.
type Amqp struct {
	conn *amqp.Connection
	mu   sync.Mutex // guards ch, amqp channels are not safe for concurrent publishing
	ch   *amqp.Channel
}

// New instantiates a new amqp broker.
func New(uri string) (*Amqp, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("cannot dial amqp broker: %w", err)
	}

	slog.Info("connected to amqp broker")

	return &Amqp{conn: conn}, nil
}

// Setup declares the message broker exchange:
//
// - we ("wallet events"): the wallet service publishes events to this exchange with routing key
// <net>.<kind>.<hash>
func (r *Amqp) Setup() error {
	// obtain a one-use channel
	channel, err := r.conn.Channel()
	if err != nil {
		return err
	}
	defer channel.Close()

	return channel.ExchangeDeclare(Exchange, amqp.ExchangeTopic, true, false, false, false, nil)
}

// Close terminates gracefully the connection to the AMQP message broker
func (r *Amqp) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ch != nil {
		if err := r.ch.Close(); err != nil {
			slog.Warn("error closing amqp channel", "error", err)
		}

		r.ch = nil
	}

	return r.conn.Close()
}

// SendEvent publishes a wallet event to the "we" exchange
func (r *Amqp) SendEvent(e msg.Event) (err error) {
	// marshal to JSON
	var jsonDoc []byte
	if jsonDoc, err = json.Marshal(e); err != nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// obtain channel if not present
	if r.ch == nil {
		if r.ch, err = r.conn.Channel(); err != nil {
			return
		}
	}
	// build body
	pub := amqp.Publishing{
		Headers:     amqp.Table{"x-event-id": e.ID},
		Body:        jsonDoc,
		ContentType: "application/json",
		MessageId:   e.ID,
		Timestamp:   e.TS,
	}
	// publish
	if err = r.ch.Publish(Exchange, RoutingKey(e), false, false, pub); err != nil {
		// the channel is closed by the broker on error, get a new one next time
		r.ch = nil

		return fmt.Errorf("[%s] cannot publish event: %w", e.Net, err)
	}

	return nil
}

// RoutingKey returns the topic routing key for an event.
func RoutingKey(e msg.Event) string {
	return e.Net + "." + e.Kind + "." + e.Hash
}
