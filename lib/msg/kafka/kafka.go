// Package kafka implements the message broker interface for Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tarancss/dwallet/lib/msg"
)

// Topic the wallet publishes events to.
const Topic = "wallet_events"

// batchTimeout bounds how long a write waits for a batch to fill. Events are written one at a time from the
// request path, so the writer sends each message as soon as it is handed one.
const batchTimeout = 10 * time.Millisecond

// Publisher writes wallet events to a Kafka topic, keyed by transaction hash.
type Publisher struct {
	writer *kafka.Writer
}

// New returns a publisher for the comma separated list of brokers.
func New(brokers string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
			Topic:                  Topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchSize:              1,
			BatchTimeout:           batchTimeout,
			WriteTimeout:           10 * time.Second,
		},
	}
}

// Setup is a no-op, the topic is created on first write when the broker allows it.
func (p *Publisher) Setup() error {
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// message returns the Kafka message of a wallet event.
func message(e msg.Event) (kafka.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(e.Hash),
		Value: data,
		Headers: []kafka.Header{
			{Key: "net", Value: []byte(e.Net)},
			{Key: "kind", Value: []byte(e.Kind)},
		},
	}, nil
}

// SendEvent publishes a wallet event.
func (p *Publisher) SendEvent(e msg.Event) error {
	m, err := message(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = p.writer.WriteMessages(ctx, m); err != nil {
		return fmt.Errorf("[%s] cannot publish event: %w", e.Net, err)
	}

	return nil
}
