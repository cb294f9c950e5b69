package badger

import (
	"context"
	"encoding/binary"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docsift/core"
	"github.com/poiesic/docsift/storage"
)

// FullTextRepository implements storage.FullTextRepository for BadgerDB.
//
// The index stores term postings with per-document frequencies plus a
// reverse index used for cleanup. Relevance is term frequency normalized
// by document length, so short documents that are mostly about the query
// outrank long documents that mention it in passing.
type FullTextRepository struct {
	backend *Backend
}

var _ storage.FullTextRepository = (*FullTextRepository)(nil)

// NewFullTextRepository creates a new FullTextRepository.
func NewFullTextRepository(backend *Backend) *FullTextRepository {
	return &FullTextRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *FullTextRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *FullTextRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// IndexDocument adds a document's content to the full-text index.
func (r *FullTextRepository) IndexDocument(ctx context.Context, doc *core.Document) error {
	if doc == nil || !doc.HasContent {
		return nil
	}

	tokens := tokenize(doc.Content)
	if len(tokens) == 0 {
		return nil
	}
	freqs := termFrequencies(tokens)

	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Re-indexing replaces any previous terms
		if err := removeDocumentTerms(tx, doc.Id); err != nil {
			return err
		}

		for term, count := range freqs {
			countBuf := make([]byte, 4)
			binary.BigEndian.PutUint32(countBuf, count)
			if err := tx.Set(makeTermPostingKey(term, doc.Id), countBuf); err != nil {
				return err
			}
			if err := tx.Set(makeDocTermKey(doc.Id, term), nil); err != nil {
				return err
			}
		}

		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(tokens)))
		if err := tx.Set(makeDocLengthKey(doc.Id), lenBuf); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// RemoveFromIndex removes a document's terms from the full-text index.
func (r *FullTextRepository) RemoveFromIndex(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := removeDocumentTerms(tx, id); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// SearchText finds documents matching the query terms, ordered by
// relevance descending.
func (r *FullTextRepository) SearchText(ctx context.Context, query string, limit int) ([]*core.TextMatch, error) {
	queryTerms := termFrequencies(tokenize(query))
	if len(queryTerms) == 0 {
		return nil, nil
	}

	scores := make(map[core.ID]float64)

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for term := range queryTerms {
			startKey := makePartialTermPostingKey(term)
			iter := tx.NewIterator(badger.DefaultIteratorOptions)

			for iter.Seek(startKey); iter.Valid(); iter.Next() {
				key := iter.Item().Key()
				if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
					break
				}

				var count uint32
				if err := iter.Item().Value(func(val []byte) error {
					count = binary.BigEndian.Uint32(val)
					return nil
				}); err != nil {
					iter.Close()
					return err
				}

				docID := termPostingDocID(key)
				docLen, err := readDocLength(tx, docID)
				if err != nil {
					iter.Close()
					return err
				}
				if docLen == 0 {
					continue
				}

				scores[docID] += float64(count) / float64(docLen)
			}
			iter.Close()
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	var results []*core.TextMatch
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for docID, score := range scores {
			doc, err := readDocument(tx, makeDocumentKey(docID))
			if err != nil {
				return err
			}
			if doc == nil {
				continue
			}
			results = append(results, &core.TextMatch{
				DocumentId: doc.Id,
				Filename:   doc.Filename,
				Content:    doc.Content,
				Relevance:  score,
				CreatedAt:  doc.CreatedAt,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by relevance descending, document ID as tiebreaker for
	// deterministic ordering
	slices.SortFunc(results, func(a, b *core.TextMatch) int {
		if a.Relevance > b.Relevance {
			return -1
		}
		if a.Relevance < b.Relevance {
			return 1
		}
		if a.DocumentId < b.DocumentId {
			return -1
		}
		if a.DocumentId > b.DocumentId {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// removeDocumentTerms removes a document's postings, reverse index entries,
// and length record within an open transaction.
func removeDocumentTerms(tx *badger.Txn, docID core.ID) error {
	startKey := makePartialDocTermKey(docID)

	var terms []string
	var reverseKeys [][]byte

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}
		terms = append(terms, docTermTerm(key))
		reverseKeys = append(reverseKeys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, term := range terms {
		if err := tx.Delete(makeTermPostingKey(term, docID)); err != nil {
			return err
		}
	}
	for _, key := range reverseKeys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	if len(terms) > 0 {
		if err := tx.Delete(makeDocLengthKey(docID)); err != nil {
			return err
		}
	}
	return nil
}

// readDocLength reads a document's token count from the transaction.
func readDocLength(tx *badger.Txn, docID core.ID) (uint32, error) {
	item, err := tx.Get(makeDocLengthKey(docID))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}

	var length uint32
	err = item.Value(func(val []byte) error {
		length = binary.BigEndian.Uint32(val)
		return nil
	})
	return length, err
}
