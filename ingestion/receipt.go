package ingestion

import (
	"sync"

	"github.com/poiesic/docsift/core"
)

// Receipt is the completion handle for an ingested document. The channel
// returned by Done is closed once the background embedding work has settled
// the document in a terminal status.
type Receipt struct {
	documentId core.ID
	done       chan struct{}

	mu     sync.Mutex
	status core.DocumentStatus
}

func newReceipt(documentId core.ID) *Receipt {
	return &Receipt{
		documentId: documentId,
		done:       make(chan struct{}),
		status:     core.StatusProcessing,
	}
}

// DocumentId returns the ID of the document this receipt tracks.
func (r *Receipt) DocumentId() core.ID {
	return r.documentId
}

// Done returns a channel that is closed when the document reaches a
// terminal status.
func (r *Receipt) Done() <-chan struct{} {
	return r.done
}

// Status returns the last observed status. It is only guaranteed to be
// terminal after the Done channel has closed.
func (r *Receipt) Status() core.DocumentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// settle records the terminal status and closes the Done channel.
func (r *Receipt) settle(status core.DocumentStatus) {
	r.mu.Lock()
	r.status = status
	r.mu.Unlock()
	close(r.done)
}
