package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/docsift/core"
)

// Key prefixes for different data types
const (
	documentPrefix        = "docrec"
	documentDatePrefix    = "docrecd"
	documentHashPrefix    = "dochash"
	documentIDSeq         = "docrecseq"
	embeddingPrefix       = "embrec"
	embeddingDocPrefix    = "embdoc"
	embeddingLatestPrefix = "emblat"
	embeddingIDSeq        = "embrecseq"
	termPostingPrefix     = "ftterm"
	docTermPrefix         = "ftdoc"
	docLengthPrefix       = "ftlen"
	searchLogPrefix       = "serlog"
	workflowPrefix        = "wflrec"
	workflowDocPrefix     = "wfldoc"
	actionPrefix          = "actrec"
	actionWorkflowPrefix  = "actwfl"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeDocumentDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialDocumentDateKey(timestamp time.Time) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for timestamp
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeDocumentHashKey generates a composite key for the content hash index.
// Format: prefix:hash:id
func makeDocumentHashKey(hash string, id core.ID) []byte {
	prefix := documentHashPrefix + ":" + hash + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentHashKey generates a partial key for hash lookups.
func makePartialDocumentHashKey(hash string) []byte {
	return []byte(documentHashPrefix + ":" + hash + ":")
}

// makeEmbeddingKey generates a key for an embedding by ID.
func makeEmbeddingKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", embeddingPrefix, id))
}

// makeEmbeddingDocKey generates a composite key for the document index.
// Format: prefix:docID:embID
func makeEmbeddingDocKey(docID, embID core.ID) []byte {
	prefix := embeddingDocPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(embID))
	return buf
}

// makePartialEmbeddingDocKey generates a partial key for per-document queries.
func makePartialEmbeddingDocKey(docID core.ID) []byte {
	prefix := embeddingDocPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

// makeEmbeddingLatestKey generates the key tracking the latest embedding for
// a (document, model) pair. Overwritten on every insert.
// Format: prefix:docID:model
func makeEmbeddingLatestKey(docID core.ID, model string) []byte {
	prefix := embeddingLatestPrefix + ":"
	buf := make([]byte, len(prefix)+8+len(model))
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	copy(buf[offset:], []byte(model))
	return buf
}

// embeddingLatestModel extracts the model suffix from a latest-embedding key.
func embeddingLatestModel(key []byte) string {
	prefixLen := len(embeddingLatestPrefix) + 1 + 8
	if len(key) <= prefixLen {
		return ""
	}
	return string(key[prefixLen:])
}

// makeTermPostingKey generates a posting key for a term/document pair.
// The document ID occupies the last 8 bytes, so terms containing the
// separator still parse unambiguously.
// Format: prefix:term:docID
func makeTermPostingKey(term string, docID core.ID) []byte {
	prefix := termPostingPrefix + ":" + term + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

// makePartialTermPostingKey generates a partial key for a term's postings.
func makePartialTermPostingKey(term string) []byte {
	return []byte(termPostingPrefix + ":" + term + ":")
}

// termPostingDocID extracts the document ID from a posting key.
func termPostingDocID(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeDocTermKey generates the reverse index key for cleanup on delete.
// Format: prefix:docID:term
func makeDocTermKey(docID core.ID, term string) []byte {
	prefix := docTermPrefix + ":"
	buf := make([]byte, len(prefix)+8+len(term))
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	copy(buf[offset:], []byte(term))
	return buf
}

// makePartialDocTermKey generates a partial key for a document's terms.
func makePartialDocTermKey(docID core.ID) []byte {
	prefix := docTermPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

// docTermTerm extracts the term suffix from a reverse index key.
func docTermTerm(key []byte) string {
	prefixLen := len(docTermPrefix) + 1 + 8
	if len(key) <= prefixLen {
		return ""
	}
	return string(key[prefixLen:])
}

// makeDocLengthKey generates the key storing a document's token count.
func makeDocLengthKey(docID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", docLengthPrefix, docID))
}

// makeSearchLogKey generates a time-ordered key for a search log.
// Format: prefix:timestamp:uuid
func makeSearchLogKey(timestamp time.Time, id string) []byte {
	prefix := searchLogPrefix + ":"
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	copy(buf[offset:], []byte(id))
	return buf
}

// makeWorkflowKey generates a key for a workflow execution by ID.
func makeWorkflowKey(id string) []byte {
	return []byte(workflowPrefix + ":" + id)
}

// makeWorkflowDocKey generates a composite key for the document index.
// Format: prefix:docID:startedAt:wfID
func makeWorkflowDocKey(docID core.ID, startedAt time.Time, wfID string) []byte {
	prefix := workflowDocPrefix + ":"
	buf := make([]byte, len(prefix)+16+len(wfID))
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(startedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], []byte(wfID))
	return buf
}

// makePartialWorkflowDocKey generates a partial key for per-document queries.
func makePartialWorkflowDocKey(docID core.ID) []byte {
	prefix := workflowDocPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, []byte(prefix))
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

// makeActionKey generates a key for an external action by ID.
func makeActionKey(id string) []byte {
	return []byte(actionPrefix + ":" + id)
}

// makeActionWorkflowKey generates a composite key for the workflow index.
// Format: prefix:wfID:actionID
func makeActionWorkflowKey(wfID, actionID string) []byte {
	return []byte(actionWorkflowPrefix + ":" + wfID + ":" + actionID)
}

// makePartialActionWorkflowKey generates a partial key for a workflow's actions.
func makePartialActionWorkflowKey(wfID string) []byte {
	return []byte(actionWorkflowPrefix + ":" + wfID + ":")
}
