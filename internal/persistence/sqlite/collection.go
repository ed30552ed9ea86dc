package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/example/activity-directory/internal/persistence"
)

// Collection is a persistence.Collection stored as JSON rows of one table.
// Rows keep their first insertion order; replacing a key keeps its position.
type Collection struct {
	pool  *ConnectionPool
	name  string
	retry RetryConfig
}

var (
	_ persistence.Collection = (*Collection)(nil)
	_ persistence.Replacer   = (*Collection)(nil)
)

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Find loads the collection in storage order and yields the matching documents.
func (c *Collection) Find(ctx context.Context, filter persistence.Filter) iter.Seq2[persistence.Document, error] {
	return func(yield func(persistence.Document, error) bool) {
		if err := filter.Validate(); err != nil {
			yield(nil, err)
			return
		}
		docs, err := c.load(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, doc := range docs {
			if len(filter) > 0 && !filter.Match(doc) {
				continue
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// load reads every row up front so no statement stays open while callers
// consume the sequence.
func (c *Collection) load(ctx context.Context) ([]persistence.Document, error) {
	rows, err := c.pool.DB().QueryContext(ctx,
		`SELECT id, body FROM documents WHERE collection = ? ORDER BY seq`, c.name)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.name, MapError(err))
	}
	defer rows.Close()

	var docs []persistence.Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		doc, err := decodeBody(id, body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.name, MapError(err))
	}
	return docs, nil
}

// FindOne returns the document stored under id.
func (c *Collection) FindOne(ctx context.Context, id string) (persistence.Document, error) {
	var body string
	err := c.pool.DB().QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`, c.name, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s/%s: %w", c.name, id, MapError(err))
	}
	return decodeBody(id, body)
}

// InsertOne upserts doc under its _id.
func (c *Collection) InsertOne(ctx context.Context, doc persistence.Document) (persistence.InsertOneResult, error) {
	id, ok := doc.ID()
	if !ok {
		return persistence.InsertOneResult{Acknowledged: false}, nil
	}
	body, err := encodeBody(doc)
	if err != nil {
		return persistence.InsertOneResult{}, err
	}
	err = WithRetry(ctx, c.retry, func() error {
		_, err := c.pool.DB().ExecContext(ctx, upsertQuery, c.name, id, body)
		return err
	})
	if err != nil {
		return persistence.InsertOneResult{}, fmt.Errorf("insert %s/%s: %w", c.name, id, err)
	}
	return persistence.InsertOneResult{Acknowledged: true, InsertedID: id}, nil
}

const upsertQuery = `
	INSERT INTO documents (collection, id, body) VALUES (?, ?, ?)
	ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body
`

// UpdateOne applies update inside a transaction. Counts follow the in-memory
// store: 1 whenever the key exists.
func (c *Collection) UpdateOne(ctx context.Context, id string, update persistence.Update) (persistence.UpdateResult, error) {
	var result persistence.UpdateResult
	err := WithRetry(ctx, c.retry, func() error {
		result = persistence.UpdateResult{}
		return c.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			var raw string
			err := tx.QueryRowContext(ctx,
				`SELECT body FROM documents WHERE collection = ? AND id = ?`, c.name, id).Scan(&raw)
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			if err != nil {
				return err
			}
			doc, err := decodeBody(id, raw)
			if err != nil {
				return err
			}
			update.Apply(doc)
			body, err := encodeBody(doc)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE documents SET body = ? WHERE collection = ? AND id = ?`, body, c.name, id); err != nil {
				return err
			}
			result = persistence.UpdateResult{MatchedCount: 1, ModifiedCount: 1}
			return nil
		})
	})
	if err != nil {
		return persistence.UpdateResult{}, fmt.Errorf("update %s/%s: %w", c.name, id, err)
	}
	return result, nil
}

// CountDocuments counts the documents matching filter.
func (c *Collection) CountDocuments(ctx context.Context, filter persistence.Filter) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}
	if len(filter) == 0 {
		var n int64
		err := c.pool.DB().QueryRowContext(ctx,
			`SELECT COUNT(*) FROM documents WHERE collection = ?`, c.name).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", c.name, MapError(err))
		}
		return n, nil
	}
	docs, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, doc := range docs {
		if filter.Match(doc) {
			n++
		}
	}
	return n, nil
}

// Replace swaps the collection contents for docs in one transaction.
func (c *Collection) Replace(ctx context.Context, docs []persistence.Document) error {
	return WithRetry(ctx, c.retry, func() error {
		return c.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ?`, c.name); err != nil {
				return err
			}
			for _, doc := range docs {
				id, ok := doc.ID()
				if !ok {
					continue
				}
				body, err := encodeBody(doc)
				if err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, upsertQuery, c.name, id, body); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func encodeBody(doc persistence.Document) (string, error) {
	body := make(map[string]any, len(doc))
	for k, v := range doc {
		if k == persistence.IDField {
			continue
		}
		body[k] = v
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

func decodeBody(id, raw string) (persistence.Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc := persistence.Document(body).Clone()
	doc[persistence.IDField] = id
	return doc, nil
}
