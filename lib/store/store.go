// Package store defines the interface for database implementations of the wallet transaction log. The log is
// append only: records are added once and then read by source account, never updated or deleted.
package store

import (
	"context"
	"errors"
)

// DB defines required methods for the transaction log
type DB interface {
	AddTx(ctx context.Context, tx Transaction) (string, error)
	GetTxs(ctx context.Context, source string) ([]Transaction, error)
	Close() error
}

// Errors returned
var (
	ErrMissingField = errors.New("transaction record is missing a required field")
)
