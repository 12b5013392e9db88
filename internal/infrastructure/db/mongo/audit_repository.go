package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bellavista/carehome-cms/internal/core/domain"
)

const auditCollection = "audit_log"

// AuditRepository implements ports.AuditSink on an append-only MongoDB
// collection. Entries are never updated or deleted through it.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

// EnsureIndexes creates the indexes used by Recent. It is safe to call on
// every start.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "resource_type", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create audit indexes: %w", err)
	}
	return nil
}

// Append inserts entry into the audit_log collection.
func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	entry.Timestamp = entry.Timestamp.UTC()
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries matching filter.
func (r *AuditRepository) Recent(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.coll.Find(ctx, auditQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find audit entries: %w", err)
	}
	defer cur.Close(ctx)

	out := []domain.AuditEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode audit entries: %w", err)
	}
	return out, nil
}

func auditQuery(filter domain.AuditFilter) bson.M {
	q := bson.M{}
	if filter.Action != "" {
		q["action"] = filter.Action
	}
	if filter.ResourceType != "" {
		q["resource_type"] = filter.ResourceType
	}
	return q
}
