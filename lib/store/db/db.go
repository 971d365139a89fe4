// Package db implements the opening of transaction log database connections.
package db

import (
	"fmt"

	"github.com/tarancss/dwallet/lib/store"
	"github.com/tarancss/dwallet/lib/store/memory"
	"github.com/tarancss/dwallet/lib/store/mongo"
	"github.com/tarancss/dwallet/lib/store/postgres"
)

// Supported database types.
const (
	MONGODB  string = "mongodb"
	POSTGRES string = "postgresql"
	MEMORY   string = "memory"
)

// New returns a new database connection according to the options (database type). name is the database used by
// MongoDB; for PostgreSQL the database is part of the connection string.
func New(options, connection, name string) (store.DB, error) {
	switch options {
	case MONGODB:
		return mongo.New(connection, name)
	case POSTGRES:
		return postgres.New(connection)
	case MEMORY:
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown database type %q", options)
}
