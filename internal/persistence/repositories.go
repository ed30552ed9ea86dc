package persistence

import (
	"context"
	"iter"
)

// IDField is the document field that carries the record key.
const IDField = "_id"

// InsertOneResult reports the outcome of Collection.InsertOne.
type InsertOneResult struct {
	Acknowledged bool
	InsertedID   string
}

// UpdateResult reports the outcome of Collection.UpdateOne.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}

// Collection is the document storage capability shared by every backend.
//
// Documents handed out by a Collection are copies; callers mutate stored
// records only through UpdateOne.
type Collection interface {
	// Find yields the documents matching every condition of the filter, in
	// storage order. An empty filter yields all documents. The sequence may be
	// ranged over more than once.
	Find(ctx context.Context, filter Filter) iter.Seq2[Document, error]
	// FindOne returns the document stored under id or ErrNotFound.
	FindOne(ctx context.Context, id string) (Document, error)
	// InsertOne stores doc under its _id field. A document without a string
	// _id is not stored and the result is not acknowledged.
	InsertOne(ctx context.Context, doc Document) (InsertOneResult, error)
	// UpdateOne applies the $push clauses and then the $pull clauses to the
	// document stored under id.
	UpdateOne(ctx context.Context, id string, update Update) (UpdateResult, error)
	// CountDocuments returns the number of documents matching the filter.
	CountDocuments(ctx context.Context, filter Filter) (int64, error)
}

// Replacer is implemented by collections whose contents can be overwritten
// wholesale. Seeding uses it to repair a store after a failed insert loop.
type Replacer interface {
	Replace(ctx context.Context, docs []Document) error
}

// Collect drains a Find sequence into a slice.
func Collect(seq iter.Seq2[Document, error]) ([]Document, error) {
	var docs []Document
	for doc, err := range seq {
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
