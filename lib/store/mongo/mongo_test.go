//go:build integration

package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/tarancss/dwallet/lib/store"
)

// These tests require an available MongoDB server at localhost:27017.
var uri string = "mongodb://localhost:27017"

func TestMongo(t *testing.T) {
	ctx := context.Background()

	m, err := New(uri, "dwallet-test")
	if err != nil {
		t.Fatalf("err:%v", err)
	}

	defer func() {
		_ = m.Drop(ctx)
		if err := m.Close(); err != nil {
			t.Errorf("err:%v", err)
		}
	}()

	src := "GSOURCE"
	for _, amt := range []string{"10", "2.5"} {
		id, err := m.AddTx(ctx, store.Transaction{Net: "testnet", Source: src, Destination: "GDEST", Amount: amt, Hash: "h" + amt})
		if err != nil || id == "" {
			t.Errorf("AddTx id:%s err:%v", id, err)
		}
	}

	if _, err = m.AddTx(ctx, store.Transaction{Source: src}); !errors.Is(err, store.ErrMissingField) {
		t.Errorf("expected ErrMissingField, got:%v", err)
	}

	txs, err := m.GetTxs(ctx, src)
	if err != nil || len(txs) != 2 || txs[0].Amount != "10" || txs[1].Amount != "2.5" || txs[0].CreatedAt.IsZero() {
		t.Errorf("GetTxs got:%+v err:%v", txs, err)
	}

	if txs, err = m.GetTxs(ctx, "GOTHER"); err != nil || len(txs) != 0 {
		t.Errorf("GetTxs for unknown source got:%+v err:%v", txs, err)
	}
}
