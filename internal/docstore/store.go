package docstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Collection names of the five remote collections.
const (
	CollectionUsers      = "users"
	CollectionStudents   = "students"
	CollectionSubjects   = "subjects"
	CollectionClassrooms = "classrooms"
	CollectionReports    = "reports"
)

// Document is a schemaless record keyed by a store-assigned ID.
type Document struct {
	ID   string `db:"id"`
	Data []byte `db:"doc"`
}

// WriteOp discriminates batched writes.
type WriteOp string

const (
	OpSet    WriteOp = "set"
	OpDelete WriteOp = "delete"
)

// Write is a single entry of a batched multi-document write.
type Write struct {
	Op         WriteOp
	Collection string
	ID         string
	Data       []byte
}

// Store is the document database consumed by the domain store: whole
// collection reads, single-document create/update/delete, and one batched
// multi-document write.
type Store interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Create(ctx context.Context, collection string, data []byte) (string, error)
	CreateWithID(ctx context.Context, collection, id string, data []byte) error
	Update(ctx context.Context, collection, id string, data []byte) error
	Delete(ctx context.Context, collection, id string) error
	Batch(ctx context.Context, writes []Write) error
}

// SQLStore keeps every collection in a single documents table with a JSONB
// payload column, mirroring a remote document database.
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore creates a new store over the given database.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

// List returns every document of a collection.
func (s *SQLStore) List(ctx context.Context, collection string) ([]Document, error) {
	const query = `SELECT id, doc FROM documents WHERE collection = $1 ORDER BY id`
	var docs []Document
	if err := s.db.SelectContext(ctx, &docs, query, collection); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

// Create inserts a document under a freshly assigned ID and returns it.
func (s *SQLStore) Create(ctx context.Context, collection string, data []byte) (string, error) {
	id := uuid.NewString()
	if err := s.CreateWithID(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// CreateWithID inserts a document under a caller-chosen ID. Used for user
// profiles, which are keyed by the identity-assigned credential ID.
func (s *SQLStore) CreateWithID(ctx context.Context, collection, id string, data []byte) error {
	const query = `INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, data); err != nil {
		return fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update replaces a document payload.
func (s *SQLStore) Update(ctx context.Context, collection, id string, data []byte) error {
	const query = `UPDATE documents SET doc = $3 WHERE collection = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, query, collection, id, data)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document. Deleting an absent document is not an error.
func (s *SQLStore) Delete(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Batch applies every write in a single transaction. Used only by the seed
// procedure and the teacher-deletion cleanup pass.
func (s *SQLStore) Batch(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const setQuery = `INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc`
	const deleteQuery = `DELETE FROM documents WHERE collection = $1 AND id = $2`

	for _, w := range writes {
		switch w.Op {
		case OpDelete:
			if _, err := tx.ExecContext(ctx, deleteQuery, w.Collection, w.ID); err != nil {
				return fmt.Errorf("batch delete %s/%s: %w", w.Collection, w.ID, err)
			}
		default:
			if _, err := tx.ExecContext(ctx, setQuery, w.Collection, w.ID, w.Data); err != nil {
				return fmt.Errorf("batch set %s/%s: %w", w.Collection, w.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}
