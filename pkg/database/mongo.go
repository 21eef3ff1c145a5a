package database

import (
	"context"
	"fmt"
	"time"

	"instamakaan/pkg/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo owns the client connection; it is created once at startup and
// closed on shutdown.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func (m *Mongo) Database() *mongo.Database {
	return m.db
}

// Ping checks that the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// InitMongo connects to MONGO_URL and pings the primary.
func InitMongo(ctx context.Context, config utils.DatabaseConfig) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(config.MongoURL).
		SetMaxPoolSize(uint64(config.MaxConns)).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Mongo{client: client, db: client.Database(config.Name)}, nil
}
