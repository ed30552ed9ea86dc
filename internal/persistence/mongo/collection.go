package mongo

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/activity-directory/internal/persistence"
)

// Collection adapts a driver collection to persistence.Collection.
type Collection struct {
	coll *mongo.Collection
}

var _ persistence.Collection = (*Collection)(nil)

// Find runs the filter on the server each time the sequence is ranged over.
func (c *Collection) Find(ctx context.Context, filter persistence.Filter) iter.Seq2[persistence.Document, error] {
	return func(yield func(persistence.Document, error) bool) {
		if err := filter.Validate(); err != nil {
			yield(nil, err)
			return
		}
		cursor, err := c.coll.Find(ctx, filter.BSON())
		if err != nil {
			yield(nil, fmt.Errorf("find %s: %w", c.coll.Name(), err))
			return
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var raw bson.M
			if err := cursor.Decode(&raw); err != nil {
				yield(nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err))
				return
			}
			if !yield(toDocument(raw), nil) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate %s: %w", c.coll.Name(), err))
		}
	}
}

// FindOne looks a document up by _id.
func (c *Collection) FindOne(ctx context.Context, id string) (persistence.Document, error) {
	var raw bson.M
	err := c.coll.FindOne(ctx, idFilter(id)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s/%s: %w", c.coll.Name(), id, err)
	}
	return toDocument(raw), nil
}

// InsertOne inserts doc. Unlike the local stores the server rejects an
// existing _id with a duplicate key error.
func (c *Collection) InsertOne(ctx context.Context, doc persistence.Document) (persistence.InsertOneResult, error) {
	id, ok := doc.ID()
	if !ok {
		return persistence.InsertOneResult{Acknowledged: false}, nil
	}
	if _, err := c.coll.InsertOne(ctx, map[string]any(doc)); err != nil {
		return persistence.InsertOneResult{}, fmt.Errorf("insert %s/%s: %w", c.coll.Name(), id, err)
	}
	return persistence.InsertOneResult{Acknowledged: true, InsertedID: id}, nil
}

// UpdateOne sends the $push/$pull update. Counts are reported as the server
// computes them.
func (c *Collection) UpdateOne(ctx context.Context, id string, update persistence.Update) (persistence.UpdateResult, error) {
	if update.IsZero() {
		n, err := c.coll.CountDocuments(ctx, idFilter(id))
		if err != nil {
			return persistence.UpdateResult{}, fmt.Errorf("update %s/%s: %w", c.coll.Name(), id, err)
		}
		return persistence.UpdateResult{MatchedCount: n}, nil
	}
	res, err := c.coll.UpdateOne(ctx, idFilter(id), update.BSON())
	if err != nil {
		return persistence.UpdateResult{}, fmt.Errorf("update %s/%s: %w", c.coll.Name(), id, err)
	}
	return persistence.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

// CountDocuments counts the documents matching filter on the server.
func (c *Collection) CountDocuments(ctx context.Context, filter persistence.Filter) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}
	n, err := c.coll.CountDocuments(ctx, filter.BSON())
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.coll.Name(), err)
	}
	return n, nil
}

func toDocument(raw bson.M) persistence.Document {
	return persistence.Document(raw).Clone()
}
