// Package memory provides the in-process fallback collection used when no
// document database is reachable. Contents live only as long as the process.
package memory

import (
	"context"
	"iter"
	"sync"

	"github.com/example/activity-directory/internal/persistence"
)

// Store is an insertion ordered, in-memory persistence.Collection.
type Store struct {
	mu    sync.RWMutex
	keys  []string
	items map[string]map[string]any
}

var (
	_ persistence.Collection = (*Store)(nil)
	_ persistence.Replacer   = (*Store)(nil)
)

// New returns an empty Store.
func New() *Store {
	return &Store{items: make(map[string]map[string]any)}
}

// Find yields copies of the matching documents in insertion order. Each range
// over the returned sequence reads the store afresh.
func (s *Store) Find(ctx context.Context, filter persistence.Filter) iter.Seq2[persistence.Document, error] {
	return func(yield func(persistence.Document, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		if err := filter.Validate(); err != nil {
			yield(nil, err)
			return
		}
		for _, doc := range s.snapshot(filter) {
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// snapshot copies the matching documents under the read lock so that callers
// ranging over Find never hold it while yielding.
func (s *Store) snapshot(filter persistence.Filter) []persistence.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]persistence.Document, 0, len(s.keys))
	for _, key := range s.keys {
		view := withID(key, s.items[key])
		if len(filter) > 0 && !filter.Match(view) {
			continue
		}
		docs = append(docs, view.Clone())
	}
	return docs
}

// FindOne returns a copy of the document stored under id.
func (s *Store) FindOne(ctx context.Context, id string) (persistence.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.items[id]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return withID(id, body).Clone(), nil
}

// InsertOne stores doc without its _id field under the _id value. An existing
// record with the same key is replaced in place.
func (s *Store) InsertOne(ctx context.Context, doc persistence.Document) (persistence.InsertOneResult, error) {
	if err := ctx.Err(); err != nil {
		return persistence.InsertOneResult{}, err
	}
	id, ok := doc.ID()
	if !ok {
		return persistence.InsertOneResult{Acknowledged: false}, nil
	}
	body := bodyOf(doc)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.putLocked(id, body)
	return persistence.InsertOneResult{Acknowledged: true, InsertedID: id}, nil
}

// UpdateOne applies update to the document stored under id. Both counts are 1
// whenever the record exists, even when a pull found nothing to remove.
func (s *Store) UpdateOne(ctx context.Context, id string, update persistence.Update) (persistence.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return persistence.UpdateResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	body, ok := s.items[id]
	if !ok {
		return persistence.UpdateResult{}, nil
	}
	update.Apply(body)
	return persistence.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

// CountDocuments counts the documents matching filter.
func (s *Store) CountDocuments(ctx context.Context, filter persistence.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := filter.Validate(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(filter) == 0 {
		return int64(len(s.keys)), nil
	}
	var n int64
	for _, key := range s.keys {
		if filter.Match(withID(key, s.items[key])) {
			n++
		}
	}
	return n, nil
}

// Replace discards the current contents and stores docs in order. Documents
// without a string _id are skipped.
func (s *Store) Replace(ctx context.Context, docs []persistence.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = nil
	s.items = make(map[string]map[string]any, len(docs))
	for _, doc := range docs {
		id, ok := doc.ID()
		if !ok {
			continue
		}
		s.putLocked(id, bodyOf(doc))
	}
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

func (s *Store) putLocked(id string, body map[string]any) {
	if _, exists := s.items[id]; !exists {
		s.keys = append(s.keys, id)
	}
	s.items[id] = body
}

func bodyOf(doc persistence.Document) map[string]any {
	body := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == persistence.IDField {
			continue
		}
		body[k] = persistence.Normalize(v)
	}
	return body
}

// withID returns a shallow view of body with the key restored.
func withID(id string, body map[string]any) persistence.Document {
	view := make(persistence.Document, len(body)+1)
	for k, v := range body {
		view[k] = v
	}
	view[persistence.IDField] = id
	return view
}
