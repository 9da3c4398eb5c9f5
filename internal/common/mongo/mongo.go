package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds MongoDB configuration. An empty URI disables MongoDB.
type Config struct {
	URI            string        `envconfig:"MONGO_URI"`
	Database       string        `envconfig:"MONGO_DATABASE" default:"gr4vydemo"`
	ConnectTimeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
}

// Enabled reports whether a MongoDB URI was configured
func (c Config) Enabled() bool {
	return c.URI != ""
}

// Client wraps a mongo client bound to one database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// New connects to MongoDB and verifies the connection
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	logger.Info("mongo connection established", "database", cfg.Database)

	return &Client{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger,
	}, nil
}

// Collection returns a collection of the configured database
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// HealthCheck pings the primary
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (c *Client) Close() {
	c.logger.Info("closing mongo connection")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.client.Disconnect(ctx); err != nil {
		c.logger.Warn("mongo disconnect", "error", err)
	}
}
