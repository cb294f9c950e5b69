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

// WorkflowRepository implements storage.WorkflowRepository for BadgerDB.
type WorkflowRepository struct {
	backend *Backend
}

var _ storage.WorkflowRepository = (*WorkflowRepository)(nil)

// NewWorkflowRepository creates a new WorkflowRepository.
func NewWorkflowRepository(backend *Backend) *WorkflowRepository {
	return &WorkflowRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources beyond the backend.
func (r *WorkflowRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *WorkflowRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddWorkflow adds a workflow execution record.
// Generates a UUID and start timestamp for records that lack them.
func (r *WorkflowRepository) AddWorkflow(ctx context.Context, wf *core.WorkflowExecution) (*core.WorkflowExecution, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if wf.Id == "" {
			wf.Id = uuid.NewString()
		}
		if wf.StartedAt.IsZero() {
			wf.StartedAt = time.Now().UTC()
		}

		if err := tx.Set(makeWorkflowKey(wf.Id), storage.MarshalWorkflowExecution(wf)); err != nil {
			return err
		}

		docKey := makeWorkflowDocKey(wf.DocumentId, wf.StartedAt, wf.Id)
		if err := tx.Set(docKey, []byte(wf.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return wf, err
}

// UpdateWorkflow updates an existing workflow execution.
// The document index entry follows DocumentId changes, so executions
// started before their document existed stay listable once it does.
func (r *WorkflowRepository) UpdateWorkflow(ctx context.Context, wf *core.WorkflowExecution) (*core.WorkflowExecution, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeWorkflowKey(wf.Id)
		item, err := tx.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var existing *core.WorkflowExecution
		if err := item.Value(func(val []byte) error {
			var err error
			existing, err = storage.UnmarshalWorkflowExecution(val)
			return err
		}); err != nil {
			return err
		}

		if existing.DocumentId != wf.DocumentId {
			oldKey := makeWorkflowDocKey(existing.DocumentId, existing.StartedAt, wf.Id)
			if err := tx.Delete(oldKey); err != nil {
				return err
			}
			newKey := makeWorkflowDocKey(wf.DocumentId, wf.StartedAt, wf.Id)
			if err := tx.Set(newKey, []byte(wf.Id)); err != nil {
				return err
			}
		}

		if err := tx.Set(key, storage.MarshalWorkflowExecution(wf)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return wf, err
}

// GetWorkflow retrieves a workflow execution by ID.
func (r *WorkflowRepository) GetWorkflow(ctx context.Context, id string) (*core.WorkflowExecution, error) {
	var result *core.WorkflowExecution
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeWorkflowKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			result, err = storage.UnmarshalWorkflowExecution(val)
			return err
		})
	}, false)
	return result, err
}

// ListWorkflowsForDocument retrieves workflow executions for a document,
// most recent first.
func (r *WorkflowRepository) ListWorkflowsForDocument(ctx context.Context, docID core.ID) ([]*core.WorkflowExecution, error) {
	var results []*core.WorkflowExecution
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialWorkflowDocKey(docID)

		var wfIDs []string
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}
			var wfID string
			if err := iter.Item().Value(func(val []byte) error {
				wfID = string(val)
				return nil
			}); err != nil {
				iter.Close()
				return err
			}
			wfIDs = append(wfIDs, wfID)
		}
		iter.Close()

		// Index keys sort oldest first; reverse for newest first
		slices.Reverse(wfIDs)

		for _, wfID := range wfIDs {
			item, err := tx.Get(makeWorkflowKey(wfID))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			var wf *core.WorkflowExecution
			if err := item.Value(func(val []byte) error {
				var err error
				wf, err = storage.UnmarshalWorkflowExecution(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, wf)
		}
		return nil
	}, false)
	return results, err
}

// AddAction adds an external action record.
// Generates a UUID and timestamp for records that lack them.
func (r *WorkflowRepository) AddAction(ctx context.Context, action *core.ExternalAction) (*core.ExternalAction, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if action.Id == "" {
			action.Id = uuid.NewString()
		}
		if action.CreatedAt.IsZero() {
			action.CreatedAt = time.Now().UTC()
		}

		if err := tx.Set(makeActionKey(action.Id), storage.MarshalExternalAction(action)); err != nil {
			return err
		}

		wfKey := makeActionWorkflowKey(action.WorkflowId, action.Id)
		if err := tx.Set(wfKey, []byte(action.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return action, err
}

// UpdateAction updates an existing external action.
func (r *WorkflowRepository) UpdateAction(ctx context.Context, action *core.ExternalAction) (*core.ExternalAction, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeActionKey(action.Id)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		if err := tx.Set(key, storage.MarshalExternalAction(action)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return action, err
}

// ListActionsForWorkflow retrieves the actions triggered by a workflow.
func (r *WorkflowRepository) ListActionsForWorkflow(ctx context.Context, workflowID string) ([]*core.ExternalAction, error) {
	var results []*core.ExternalAction
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialActionWorkflowKey(workflowID)

		var actionIDs []string
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}
			var actionID string
			if err := iter.Item().Value(func(val []byte) error {
				actionID = string(val)
				return nil
			}); err != nil {
				iter.Close()
				return err
			}
			actionIDs = append(actionIDs, actionID)
		}
		iter.Close()

		for _, actionID := range actionIDs {
			item, err := tx.Get(makeActionKey(actionID))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			var action *core.ExternalAction
			if err := item.Value(func(val []byte) error {
				var err error
				action, err = storage.UnmarshalExternalAction(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, action)
		}
		return nil
	}, false)
	return results, err
}
