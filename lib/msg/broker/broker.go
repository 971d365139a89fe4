// Package broker implements the opening of message broker connections.
package broker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tarancss/dwallet/lib/msg"
	"github.com/tarancss/dwallet/lib/msg/amqp"
	"github.com/tarancss/dwallet/lib/msg/kafka"
	"github.com/tarancss/dwallet/lib/msg/nats"
)

// Supported broker types. An empty type disables events.
const (
	AMQP  = "amqp"
	KAFKA = "kafka"
	NATS  = "nats"
)

// Retry is how long New waits before the second and last connection attempt.
var Retry = 10 * time.Second //nolint:gochecknoglobals // tests shorten it

// New connects to the broker of type mbType at conn and sets it up. A failed connection is retried once after Retry
// so the broker has time to come up when started alongside the wallet.
func New(mbType, conn string) (msg.MsgBroker, error) {
	mb, err := dial(mbType, conn)
	if err != nil {
		slog.Warn("message broker not ready, retrying", "type", mbType, "wait", Retry, "error", err)
		time.Sleep(Retry)

		if mb, err = dial(mbType, conn); err != nil {
			return nil, err
		}
	}

	if err = mb.Setup(); err != nil {
		_ = mb.Close()

		return nil, fmt.Errorf("cannot set up %s broker: %w", mbType, err)
	}

	return mb, nil
}

func dial(mbType, conn string) (msg.MsgBroker, error) {
	switch mbType {
	case "":
		return msg.Nop{}, nil
	case AMQP:
		return amqp.New(conn)
	case KAFKA:
		return kafka.New(conn), nil
	case NATS:
		return nats.New(conn)
	}

	return nil, fmt.Errorf("unknown message broker type %q", mbType)
}
