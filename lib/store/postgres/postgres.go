// Package postgres implements the interface for PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq" //nolint:gci // load the postgres driver that is used by the system

	"github.com/tarancss/dwallet/lib/store"
)

const schema = `CREATE TABLE IF NOT EXISTS transactions (
	id                    BIGSERIAL PRIMARY KEY,
	net                   TEXT NOT NULL DEFAULT '',
	source_account        TEXT NOT NULL,
	destination_account   TEXT NOT NULL,
	amount                TEXT NOT NULL,
	ledger_transaction_id TEXT NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS transactions_source_account_idx ON transactions (source_account);`

// Postgres implements a connection to a PostgreSQL database.
type Postgres struct {
	db *sql.DB
}

// New returns a postgres client connection to the specified database in 'connection'. The transactions table is
// created if it does not exist.
func New(connection string) (*Postgres, error) {
	db, err := sql.Open("postgres", connection)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to DB in %s: %w", connection, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:gomnd // 5 seconds timeout
	defer cancel()

	if _, err = db.ExecContext(ctx, schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("cannot create transactions table: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close will close any database connection. Must be called at termination time.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// AddTx inserts a transaction record and returns its id.
func (p *Postgres) AddTx(ctx context.Context, tx store.Transaction) (string, error) {
	if err := tx.Check(); err != nil {
		return "", err
	}

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO transactions (net, source_account, destination_account, amount, ledger_transaction_id,
		created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var id int64
	if err := p.db.QueryRowContext(ctx, query, tx.Net, tx.Source, tx.Destination, tx.Amount, tx.Hash,
		tx.CreatedAt).Scan(&id); err != nil {
		return "", fmt.Errorf("could not insert transaction in db: %w", err)
	}

	return strconv.FormatInt(id, 10), nil
}

// GetTxs returns the transactions sent by source, oldest first.
func (p *Postgres) GetTxs(ctx context.Context, source string) ([]store.Transaction, error) {
	const query = `SELECT id, net, source_account, destination_account, amount, ledger_transaction_id, created_at
		FROM transactions WHERE source_account = $1 ORDER BY created_at, id`

	rows, err := p.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("could not find transactions in db: %w", err)
	}
	defer rows.Close()

	txs := []store.Transaction{}

	for rows.Next() {
		var (
			t  store.Transaction
			id int64
		)

		if err = rows.Scan(&id, &t.Net, &t.Source, &t.Destination, &t.Amount, &t.Hash, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("could not decode transaction from db: %w", err)
		}

		t.ID = strconv.FormatInt(id, 10)
		txs = append(txs, t)
	}

	return txs, rows.Err()
}
