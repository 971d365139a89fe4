package kafka

import (
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"

	"github.com/tarancss/dwallet/lib/msg"
)

func TestNew(t *testing.T) {
	p := New("k1:9092,k2:9092")

	w := p.writer
	if w.Topic != Topic || w.Addr.String() != "k1:9092,k2:9092" || !w.AllowAutoTopicCreation {
		t.Errorf("unexpected writer topic:%s addr:%s", w.Topic, w.Addr)
	}

	// a lone event must not wait for the default one second batch timeout
	if w.BatchSize != 1 || w.BatchTimeout <= 0 || w.BatchTimeout > batchTimeout {
		t.Errorf("unexpected batching size:%d timeout:%v", w.BatchSize, w.BatchTimeout)
	}

	if _, ok := w.Balancer.(*kafka.Hash); !ok {
		t.Errorf("expected hash balancer, got %T", w.Balancer)
	}

	if err := p.Setup(); err != nil {
		t.Errorf("Setup err:%v", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close err:%v", err)
	}
}

func TestMessage(t *testing.T) {
	e := msg.NewEvent("testnet", msg.PAYMENT, "abcd", "GSOURCE")
	e.Destinations, e.Amount = []string{"GDEST"}, "1.5"

	m, err := message(e)
	if err != nil {
		t.Fatalf("message err:%v", err)
	}

	if string(m.Key) != "abcd" {
		t.Errorf("key:%s expected the transaction hash", m.Key)
	}

	headers := map[string]string{}
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}

	if len(headers) != 2 || headers["net"] != "testnet" || headers["kind"] != msg.PAYMENT {
		t.Errorf("unexpected headers %v", headers)
	}

	var got msg.Event
	if err = json.Unmarshal(m.Value, &got); err != nil || got.ID != e.ID || got.Amount != "1.5" ||
		len(got.Destinations) != 1 || got.Destinations[0] != "GDEST" {
		t.Errorf("unexpected value %s err:%v", m.Value, err)
	}
}
