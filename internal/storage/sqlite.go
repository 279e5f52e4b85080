package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	kvdb "shopping-lists/internal/storage/kv_db"
)

// SQLStore keeps records in the records table.
type SQLStore struct {
	queries *kvdb.Queries
	db      *sql.DB
}

// NewSQLStore creates a new SQLStore over an already migrated database.
func NewSQLStore(d *sql.DB) *SQLStore {
	return &SQLStore{
		queries: kvdb.New(d),
		db:      d,
	}
}

// Get retrieves a record by name.
func (s *SQLStore) Get(ctx context.Context, name string) (string, bool, error) {
	rec, err := s.queries.GetRecord(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get record %s: %w", name, err)
	}
	return rec.Value, true, nil
}

// Set inserts or replaces a record.
func (s *SQLStore) Set(ctx context.Context, name, value string) error {
	err := s.queries.UpsertRecord(ctx, kvdb.UpsertRecordParams{
		Name:      name,
		Value:     value,
		UpdatedAt: time.Now().UTC().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", name, err)
	}
	return nil
}

// SetAll upserts every record inside one transaction.
func (s *SQLStore) SetAll(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)
	now := time.Now().UTC().UnixMilli()
	for _, r := range records {
		err := q.UpsertRecord(ctx, kvdb.UpsertRecordParams{
			Name:      r.Name,
			Value:     r.Value,
			UpdatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// Names lists the stored record names.
func (s *SQLStore) Names(ctx context.Context) ([]string, error) {
	names, err := s.queries.ListRecordNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return names, nil
}
