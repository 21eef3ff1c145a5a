package repository

import (
	"context"
	"fmt"
	"time"

	"instamakaan/internal/data/entity"
	"instamakaan/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
}

type auditRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAuditRepository(db database.PgxIface, log *zap.Logger) AuditRepository {
	return &auditRepository{
		db:  db,
		log: log.With(zap.String("repository", "audit")),
	}
}

func (r *auditRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	meta := entry.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	query := `
		INSERT INTO audit_logs (id, account_id, role, action, resource, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.AccountID,
		entry.Role,
		entry.Action,
		entry.Resource,
		meta,
		entry.CreatedAt,
	)
	if err != nil {
		r.log.Warn("Failed to write audit log", zap.Error(err), zap.String("action", string(entry.Action)))
		return fmt.Errorf("create audit log %s: %w", entry.Action, err)
	}
	return nil
}

const auditCollection = "audit_logs"

type auditMongoRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewAuditMongoRepository(db *mongo.Database, log *zap.Logger) AuditRepository {
	return &auditMongoRepository{
		coll: db.Collection(auditCollection),
		log:  log.With(zap.String("repository", "audit"), zap.String("driver", "mongo")),
	}
}

func (r *auditMongoRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	meta := entry.Meta
	if meta == nil {
		meta = map[string]any{}
	}

	_, err := r.coll.InsertOne(ctx, bson.M{
		"_id":        entry.ID.String(),
		"account_id": entry.AccountID,
		"role":       string(entry.Role),
		"action":     string(entry.Action),
		"resource":   entry.Resource,
		"meta":       meta,
		"created_at": entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		r.log.Warn("Failed to write audit log", zap.Error(err), zap.String("action", string(entry.Action)))
		return fmt.Errorf("create audit log %s: %w", entry.Action, err)
	}
	return nil
}
