// Package msg defines the interface for different message brokers. The wallet publishes an event for every
// transaction it gets accepted by a ledger so other services can react to it without polling.
package msg

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds, one per wallet operation.
const (
	PAYMENT   = "payment"
	ESCROW    = "escrow"
	SIGNER    = "signer"
	OFFER     = "offer"
	TRUSTLINE = "trustline"
	MERGE     = "merge"
	SPLIT     = "split"
)

// Event is published by the wallet service after a successful ledger submission.
type Event struct {
	ID           string    `json:"id"`
	Net          string    `json:"net"`
	Kind         string    `json:"kind"`
	Hash         string    `json:"hash"`
	Source       string    `json:"source"`
	Destinations []string  `json:"destinations,omitempty"`
	Amount       string    `json:"amount,omitempty"`
	TS           time.Time `json:"ts"`
}

// NewEvent returns an Event with a fresh id and the current time.
func NewEvent(net, kind, hash, source string) Event {
	return Event{ID: uuid.NewString(), Net: net, Kind: kind, Hash: hash, Source: source, TS: time.Now().UTC()}
}

// MsgBroker is implemented by every supported broker.
type MsgBroker interface {
	Setup() error
	Close() error
	SendEvent(e Event) error
}

// Nop is the broker used when none is configured. Events are dropped.
type Nop struct{}

func (Nop) Setup() error          { return nil }
func (Nop) Close() error          { return nil }
func (Nop) SendEvent(Event) error { return nil }
