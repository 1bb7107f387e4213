package db

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/studentrecords/internal/config"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultMongoDatabase is used when neither the config nor the uri names a database
const DefaultMongoDatabase = "students"

// MongoDB holds the client and the application database handle
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects to MongoDB and verifies the connection with a ping
func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	timeout := helpers.ParseDuration(cfg.Database.ConnectTimeout, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	name, err := MongoDatabaseName(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		return nil, err
	}

	clientOptions := options.Client().
		ApplyURI(cfg.Database.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info().Str("database", name).Msg("Connected to MongoDB")
	return &MongoDB{
		Client:   client,
		Database: client.Database(name),
	}, nil
}

// MongoDatabaseName picks the configured name, then the database in the uri path.
func MongoDatabaseName(uri, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("invalid mongo uri: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return DefaultMongoDatabase, nil
}

// Ping checks that the server is still reachable
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (m *MongoDB) Close() {
	if m.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Client.Disconnect(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to disconnect from MongoDB")
	}
}
