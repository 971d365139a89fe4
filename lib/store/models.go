package store

import (
	"fmt"
	"time"
)

// Transaction is a payment submitted to the ledger, as saved to DB.
type Transaction struct {
	ID          string    `json:"id,omitempty"`
	Net         string    `json:"net,omitempty"`
	Source      string    `json:"sourceAccount"`
	Destination string    `json:"destinationAccount"`
	Amount      string    `json:"amount"`
	Hash        string    `json:"ledgerTransactionId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Check returns ErrMissingField if any of the identifying fields is empty.
func (t Transaction) Check() error {
	for name, v := range map[string]string{
		"sourceAccount":       t.Source,
		"destinationAccount":  t.Destination,
		"amount":              t.Amount,
		"ledgerTransactionId": t.Hash,
	} {
		if v == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	return nil
}
