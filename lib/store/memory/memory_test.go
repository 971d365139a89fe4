package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tarancss/dwallet/lib/store"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := New()

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func(src string) {
			defer wg.Done()

			if _, err := m.AddTx(ctx, store.Transaction{Source: src, Destination: "GD", Amount: "1", Hash: "h"}); err != nil {
				t.Errorf("AddTx err:%v", err)
			}
		}([]string{"GA", "GB"}[i%2])
	}

	wg.Wait()

	for _, src := range []string{"GA", "GB"} {
		txs, err := m.GetTxs(ctx, src)
		if err != nil || len(txs) != 10 {
			t.Errorf("[%s] got %d txs err:%v", src, len(txs), err)
		}

		for _, tx := range txs {
			if tx.ID == "" || tx.CreatedAt.IsZero() || tx.Source != src {
				t.Errorf("[%s] bad record %+v", src, tx)
			}
		}
	}

	txs, err := m.GetTxs(ctx, "GC")
	if err != nil || txs == nil || len(txs) != 0 {
		t.Errorf("expected empty non nil slice, got %#v err:%v", txs, err)
	}

	cases := []store.Transaction{
		{Destination: "GD", Amount: "1", Hash: "h"},
		{Source: "GA", Amount: "1", Hash: "h"},
		{Source: "GA", Destination: "GD", Hash: "h"},
		{Source: "GA", Destination: "GD", Amount: "1"},
	}
	for i, c := range cases {
		if _, err := m.AddTx(ctx, c); !errors.Is(err, store.ErrMissingField) {
			t.Errorf("[%d] expected ErrMissingField, got:%v", i, err)
		}
	}
}
