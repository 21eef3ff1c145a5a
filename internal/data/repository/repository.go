package repository

import (
	"context"

	"instamakaan/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Repository struct {
	Account AccountRepository
	Audit   AuditRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Account: NewAccountRepository(db, log),
		Audit:   NewAuditRepository(db, log),
	}
}

func NewMongoRepository(ctx context.Context, db *mongo.Database, log *zap.Logger) (*Repository, error) {
	accounts, err := NewAccountMongoRepository(ctx, db, log)
	if err != nil {
		return nil, err
	}
	return &Repository{
		Account: accounts,
		Audit:   NewAuditMongoRepository(db, log),
	}, nil
}
