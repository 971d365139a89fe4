// Package nats implements the message broker interface for NATS.
package nats

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/tarancss/dwallet/lib/msg"
)

// Nats publishes wallet events on subjects wallet.<net>.<kind>.
type Nats struct {
	nc *nats.Conn
}

// New connects to the NATS server at url.
func New(url string) (*Nats, error) {
	nc, err := nats.Connect(url, nats.Name("dwallet"))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to nats: %w", err)
	}

	return &Nats{nc: nc}, nil
}

// Setup is a no-op, subjects need no declaration.
func (n *Nats) Setup() error {
	return nil
}

// Close drains pending messages and closes the connection.
func (n *Nats) Close() error {
	return n.nc.Drain()
}

// SendEvent publishes a wallet event.
func (n *Nats) SendEvent(e msg.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	if err = n.nc.Publish(Subject(e), data); err != nil {
		return fmt.Errorf("[%s] cannot publish event: %w", e.Net, err)
	}

	return nil
}

// Subject returns the subject an event is published on.
func Subject(e msg.Event) string {
	return "wallet." + e.Net + "." + e.Kind
}
