package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/golevandrey/zoomagia-scraper/internal/types"
)

// MongoArchive keeps a history of run batches in a MongoDB collection, one
// document per run. It sits behind the file snapshots and never replaces
// them.
type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoArchive connects to MongoDB and pings it.
func NewMongoArchive(uri, database, collection string, logger *slog.Logger) (*MongoArchive, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoArchive{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_archive"),
	}, nil
}

// Store inserts the run batch as a single archive document.
func (a *MongoArchive) Store(ctx context.Context, products []*types.Product) error {
	doc := map[string]any{
		"saved_at": time.Now(),
		"count":    len(products),
		"products": products,
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := a.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongodb insert: %w", err)
	}

	a.logger.Debug("batch archived", "products", len(products))
	return nil
}

// Close disconnects from MongoDB.
func (a *MongoArchive) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.client.Disconnect(ctx)
}
