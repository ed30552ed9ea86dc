// Package mongo binds persistence collections to a MongoDB deployment.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client is a connected MongoDB client scoped to one database.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect dials uri and pings the primary, giving up after probeTimeout. A
// failed probe disconnects the client before returning the error.
func Connect(ctx context.Context, uri, database string, probeTimeout time.Duration) (*Client, error) {
	if probeTimeout <= 0 {
		probeTimeout = time.Second
	}
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(probeTimeout).
		SetConnectTimeout(probeTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := client.Ping(probeCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Client{client: client, database: client.Database(database)}, nil
}

// Collection returns the named collection of the client's database.
func (c *Client) Collection(name string) *Collection {
	return &Collection{coll: c.database.Collection(name)}
}

// DatabaseName returns the database the client is bound to.
func (c *Client) DatabaseName() string {
	return c.database.Name()
}

// Drop removes the bound database. Only tests call it.
func (c *Client) Drop(ctx context.Context) error {
	return c.database.Drop(ctx)
}

// Disconnect closes the client's connections.
func (c *Client) Disconnect(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}

func idFilter(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}
