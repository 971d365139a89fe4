// Package mongo implements the interface for MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tarancss/dwallet/lib/store"
)

// Collection holding the transaction log.
const Collection = "transactions"

// Mongo implements a connection to a MongoDB database.
type Mongo struct {
	c   *mgo.Client
	col *mgo.Collection
}

// MongoTransaction implements a store transaction to MongoDB.
type MongoTransaction struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Net         string             `bson:"net,omitempty"`
	Source      string             `bson:"sourceAccount"`
	Destination string             `bson:"destinationAccount"`
	Amount      string             `bson:"amount"`
	Hash        string             `bson:"ledgerTransactionId"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// Transaction converts a MongoTransaction to store.Transaction type.
func (t MongoTransaction) Transaction() store.Transaction {
	return store.Transaction{
		ID:          t.ID.Hex(),
		Net:         t.Net,
		Source:      t.Source,
		Destination: t.Destination,
		Amount:      t.Amount,
		Hash:        t.Hash,
		CreatedAt:   t.CreatedAt,
	}
}

// New returns a Mongo client connection to the specified MongoDB database uri and database name. The collection
// index on sourceAccount is created if missing.
func New(uri, database string) (*Mongo, error) {
	// get a client
	c, err := mgo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongo DB in %s: %w", uri, err)
	}
	// connect client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:gomnd // 5 seconds timeout
	defer cancel()

	if err = c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to mongo DB: %w", err)
	}

	if err = c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())

		return nil, fmt.Errorf("error reaching mongo DB: %w", err)
	}

	col := c.Database(database).Collection(Collection)

	_, err = col.Indexes().CreateOne(ctx, mgo.IndexModel{Keys: bson.D{{Key: "sourceAccount", Value: 1}}})
	if err != nil {
		_ = c.Disconnect(context.Background())

		return nil, fmt.Errorf("cannot create sourceAccount index: %w", err)
	}

	return &Mongo{c: c, col: col}, nil
}

// Close will close a database connection. Must be called at termination time.
func (m *Mongo) Close() error {
	return m.c.Disconnect(context.Background())
}

// AddTx inserts a transaction record and returns its id.
func (m *Mongo) AddTx(ctx context.Context, tx store.Transaction) (string, error) {
	if err := tx.Check(); err != nil {
		return "", err
	}

	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	res, err := m.col.InsertOne(ctx, MongoTransaction{
		Net:         tx.Net,
		Source:      tx.Source,
		Destination: tx.Destination,
		Amount:      tx.Amount,
		Hash:        tx.Hash,
		CreatedAt:   tx.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("could not insert transaction in db: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		return id.Hex(), nil
	}

	return fmt.Sprint(res.InsertedID), nil
}

// GetTxs returns the transactions sent by source, oldest first.
func (m *Mongo) GetTxs(ctx context.Context, source string) ([]store.Transaction, error) {
	cur, err := m.col.Find(ctx, bson.M{"sourceAccount": source}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("could not find transactions in db: %w", err)
	}
	defer cur.Close(ctx)

	var docs []MongoTransaction
	if err = cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode transactions from db: %w", err)
	}

	txs := make([]store.Transaction, 0, len(docs))
	for _, d := range docs {
		txs = append(txs, d.Transaction())
	}

	return txs, nil
}

// Drop deletes the transaction log collection. Only meant for test clean up.
func (m *Mongo) Drop(ctx context.Context) error {
	return m.col.Drop(ctx)
}
