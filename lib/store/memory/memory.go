// Package memory implements the interface with an in-process slice. Data is lost when the process ends.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/tarancss/dwallet/lib/store"
)

// Memory is a thread-safe in-memory transaction log.
type Memory struct {
	mu  sync.Mutex
	txs []store.Transaction
}

// New returns an empty in-memory transaction log.
func New() *Memory {
	return &Memory{}
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// AddTx appends a transaction record and returns its id.
func (m *Memory) AddTx(_ context.Context, tx store.Transaction) (string, error) {
	if err := tx.Check(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	tx.ID = strconv.Itoa(len(m.txs) + 1)
	m.txs = append(m.txs, tx)

	return tx.ID, nil
}

// GetTxs returns a copy of the transactions sent by source, in insertion order.
func (m *Memory) GetTxs(_ context.Context, source string) ([]store.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	txs := []store.Transaction{}

	for _, t := range m.txs {
		if t.Source == source {
			txs = append(txs, t)
		}
	}

	return txs, nil
}

var _ store.DB = (*Memory)(nil)
