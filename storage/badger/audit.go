package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// AuditRepository implements storage.AuditRepository for BadgerDB.
type AuditRepository struct {
	backend *Backend
}

var _ storage.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(backend *Backend) *AuditRepository {
	return &AuditRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *AuditRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *AuditRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSearchLog appends a search audit record.
// Generates a UUID and timestamp for records that lack them.
func (r *AuditRepository) AddSearchLog(ctx context.Context, log *core.SearchLog) (*core.SearchLog, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if log.Id == "" {
			log.Id = uuid.NewString()
		}
		if log.CreatedAt.IsZero() {
			log.CreatedAt = time.Now().UTC()
		}

		key := makeSearchLogKey(log.CreatedAt, log.Id)
		if err := tx.Set(key, storage.MarshalSearchLog(log)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return log, err
}

// RecentSearchLogs retrieves the N most recent search logs, newest first.
func (r *AuditRepository) RecentSearchLogs(ctx context.Context, limit int) ([]*core.SearchLog, error) {
	var results []*core.SearchLog
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makeSearchLogKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC), "")
		prefix := []byte(searchLogPrefix + ":")

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var log *core.SearchLog
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				log, err = storage.UnmarshalSearchLog(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, log)
		}
		return nil
	}, false)

	return results, err
}
