package badger

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
type EmbeddingRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (*EmbeddingRepository, error) {
	idSeq, err := backend.GetSequence(embeddingIDSeq)
	if err != nil {
		return nil, err
	}

	return &EmbeddingRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *EmbeddingRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddEmbedding adds an embedding to storage.
// The latest-per-model pointer is overwritten, so re-embedding a document
// under the same model supersedes the old vector without deleting it.
func (r *EmbeddingRepository) AddEmbedding(ctx context.Context, emb *core.Embedding) (*core.Embedding, error) {
	if err := core.ValidateEmbedding(emb); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if emb.Id == 0 {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			emb.Id = core.ID(nextID)
		}

		if emb.CreatedAt.IsZero() {
			emb.CreatedAt = time.Now().UTC()
		}

		key := makeEmbeddingKey(emb.Id)
		if err := tx.Set(key, storage.MarshalEmbedding(emb)); err != nil {
			return err
		}

		docKey := makeEmbeddingDocKey(emb.DocumentId, emb.Id)
		if err := tx.Set(docKey, storage.MarshalID(emb.Id)); err != nil {
			return err
		}

		latestKey := makeEmbeddingLatestKey(emb.DocumentId, emb.Model)
		if err := tx.Set(latestKey, storage.MarshalID(emb.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return emb, err
}

// GetLatestEmbedding retrieves the most recent embedding for a document
// under the given model.
func (r *EmbeddingRepository) GetLatestEmbedding(ctx context.Context, docID core.ID, model string) (*core.Embedding, error) {
	var result *core.Embedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingLatestKey(docID, model))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var embID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			embID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readEmbedding(tx, makeEmbeddingKey(embID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetEmbeddingsForDocument retrieves all embeddings for a document.
func (r *EmbeddingRepository) GetEmbeddingsForDocument(ctx context.Context, docID core.ID) ([]*core.Embedding, error) {
	var results []*core.Embedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialEmbeddingDocKey(docID)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var embID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				embID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			emb, err := readEmbedding(tx, makeEmbeddingKey(embID))
			if err != nil {
				return err
			}
			if emb != nil {
				results = append(results, emb)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteEmbeddingsForDocument removes all embeddings for a document.
func (r *EmbeddingRepository) DeleteEmbeddingsForDocument(ctx context.Context, docID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteEmbeddingsForDocument(tx, docID); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FindNearest scans the latest embeddings under model and returns documents
// whose vectors fall within maxDistance of the query, closest first.
func (r *EmbeddingRepository) FindNearest(ctx context.Context, vector []float32, model string, maxDistance float64, limit int) ([]*core.NearestMatch, error) {
	var results []*core.NearestMatch

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingLatestPrefix + ":")

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			if embeddingLatestModel(item.Key()) != model {
				continue
			}

			var embID core.ID
			if err := item.Value(func(val []byte) error {
				var err error
				embID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			emb, err := readEmbedding(tx, makeEmbeddingKey(embID))
			if err != nil {
				return err
			}
			if emb == nil || len(emb.Vector) == 0 {
				continue
			}

			distance := cosineDistance(vector, emb.Vector)
			if distance >= maxDistance {
				continue
			}

			doc, err := readDocument(tx, makeDocumentKey(emb.DocumentId))
			if err != nil {
				return err
			}
			if doc == nil {
				continue
			}

			results = append(results, &core.NearestMatch{
				DocumentId: doc.Id,
				Filename:   doc.Filename,
				Content:    doc.Content,
				HasContent: doc.HasContent,
				Distance:   distance,
				CreatedAt:  doc.CreatedAt,
			})
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by distance ascending
	slices.SortFunc(results, func(a, b *core.NearestMatch) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// deleteEmbeddingsForDocument removes a document's embedding records and
// index entries within an open transaction.
func deleteEmbeddingsForDocument(tx *badger.Txn, docID core.ID) error {
	startKey := makePartialEmbeddingDocKey(docID)

	var embIDs []core.ID
	var docKeys [][]byte
	var models []string

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		var embID core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			embID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			iter.Close()
			return err
		}

		emb, err := readEmbedding(tx, makeEmbeddingKey(embID))
		if err != nil {
			iter.Close()
			return err
		}
		if emb != nil {
			models = append(models, emb.Model)
		}

		embIDs = append(embIDs, embID)
		docKeys = append(docKeys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, embID := range embIDs {
		if err := tx.Delete(makeEmbeddingKey(embID)); err != nil {
			return err
		}
	}
	for _, key := range docKeys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	for _, model := range models {
		if err := tx.Delete(makeEmbeddingLatestKey(docID, model)); err != nil {
			return err
		}
	}
	return nil
}

// readEmbedding reads an embedding from the transaction.
func readEmbedding(tx *badger.Txn, key []byte) (*core.Embedding, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var emb *core.Embedding
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		emb, unmarshalErr = storage.UnmarshalEmbedding(val)
		return unmarshalErr
	})
	return emb, err
}

// cosineDistance calculates 1 - cosine similarity of two vectors.
// Returns the maximum distance when either vector has zero magnitude.
func cosineDistance(a, b []float32) float64 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
