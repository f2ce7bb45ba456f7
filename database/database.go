package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poolvest/deposit-recon-api/database/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Database struct {
	client       *mongo.Client
	databaseName string
	logger       *slog.Logger
}

type DatabaseOpts struct {
	URI          string
	DatabaseName string
	Logger       *slog.Logger
}

const (
	defaultBatchSize = 1000
	defaultTimeout   = 10 * time.Second
)

func NewDatabase(opts DatabaseOpts) (*Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetMaxPoolSize(100).
		SetMinPoolSize(10).
		SetMaxConnecting(10).
		SetServerSelectionTimeout(5 * time.Second).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Database{
		client:       client,
		databaseName: opts.DatabaseName,
		logger:       opts.Logger,
	}, nil
}

// CreateIndexes ensures the read paths stay index-backed. The source
// collections are owned by the platform; indexes are the only thing this
// service adds to them.
func (db *Database) CreateIndexes(ctx context.Context) error {
	intentsColl := db.client.Database(db.databaseName).Collection("deposit_intents")
	_, err := intentsColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "matched_tx_hash", Value: 1}}},
		{Keys: bson.D{{Key: "wallet_address", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create deposit_intents indexes: %w", err)
	}

	txColl := db.client.Database(db.databaseName).Collection("pending_transactions")
	_, err = txColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tx_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "wallet_address", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create pending_transactions indexes: %w", err)
	}

	creditsColl := db.client.Database(db.databaseName).Collection("credited_entries")
	_, err = creditsColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tx_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "investor_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create credited_entries indexes: %w", err)
	}

	return nil
}

// GetDepositIntents returns a full snapshot of the deposit_intents collection.
func (db *Database) GetDepositIntents(ctx context.Context) ([]models.DepositIntent, error) {
	collection := db.client.Database(db.databaseName).Collection("deposit_intents")

	opts := options.Find().SetBatchSize(defaultBatchSize)
	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit intents: %w", err)
	}
	defer cursor.Close(ctx)

	var intents []models.DepositIntent
	if err := cursor.All(ctx, &intents); err != nil {
		return nil, fmt.Errorf("failed to decode deposit intents: %w", err)
	}

	return intents, nil
}

// GetPendingTransactions returns a full snapshot of the pending_transactions
// collection, terminal records included.
func (db *Database) GetPendingTransactions(ctx context.Context) ([]models.PendingTransaction, error) {
	collection := db.client.Database(db.databaseName).Collection("pending_transactions")

	opts := options.Find().SetBatchSize(defaultBatchSize)
	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []models.PendingTransaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode pending transactions: %w", err)
	}

	return txs, nil
}

// GetCreditedEntries returns a full snapshot of the credited_entries collection.
func (db *Database) GetCreditedEntries(ctx context.Context) ([]models.CreditedEntry, error) {
	collection := db.client.Database(db.databaseName).Collection("credited_entries")

	opts := options.Find().SetBatchSize(defaultBatchSize)
	cursor, err := collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get credited entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.CreditedEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode credited entries: %w", err)
	}

	return entries, nil
}

func (db *Database) Disconnect(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
