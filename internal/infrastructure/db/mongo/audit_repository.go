package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lumina-ai/studio/internal/core/domain"
)

const collectionLedgerEvents = "ledger_events"

// AuditRepository implements ports.AuditSink using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionLedgerEvents)}
}

// Record persists a ledger event to the ledger_events audit collection.
func (r *AuditRepository) Record(ctx context.Context, event domain.LedgerEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"user_id":     event.UserID,
		"kind":        string(event.Kind),
		"amount":      event.Amount,
		"balance":     event.Balance,
		"at":          event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.TransactionID != "" {
		doc["transaction_id"] = event.TransactionID
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// EnsureIndexes creates the indexes used by per-user audit lookups.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "at", Value: 1}}},
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
