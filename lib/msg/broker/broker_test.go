package broker

import (
	"testing"

	"github.com/tarancss/dwallet/lib/msg"
	"github.com/tarancss/dwallet/lib/msg/amqp"
	"github.com/tarancss/dwallet/lib/msg/nats"
)

func TestNew(t *testing.T) {
	Retry = 0

	mb, err := New("", "")
	if err != nil {
		t.Fatalf("err:%v", err)
	}

	if _, ok := mb.(msg.Nop); !ok {
		t.Errorf("expected Nop broker, got %T", mb)
	}

	if err = mb.SendEvent(msg.NewEvent("testnet", msg.PAYMENT, "h", "G")); err != nil {
		t.Errorf("Nop SendEvent err:%v", err)
	}

	if _, err = New("sqs", ""); err == nil {
		t.Errorf("expected error for unknown broker type")
	}
}

func TestNames(t *testing.T) {
	e := msg.NewEvent("testnet", msg.SPLIT, "abcd", "GSRC")

	if e.ID == "" || e.TS.IsZero() {
		t.Errorf("event id and ts must be set %+v", e)
	}

	if k := amqp.RoutingKey(e); k != "testnet.split.abcd" {
		t.Errorf("routing key %s", k)
	}

	if s := nats.Subject(e); s != "wallet.testnet.split" {
		t.Errorf("subject %s", s)
	}
}
