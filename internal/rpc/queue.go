package rpc

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrQueueClosed reports a Put against a queue whose consumer has gone away.
// The reader uses it to stop once the dispatch loop has exited.
var ErrQueueClosed = errors.New("pending queue closed")

// DefaultQueueCapacity bounds the number of inbound messages buffered
// between the reader and the dispatcher. A full queue blocks the reader,
// which is the backpressure path when the dispatcher stalls.
const DefaultQueueCapacity = 10

// Entry is one slot of the pending queue: either a decoded message or the
// closed marker that stands in for stream closure. The marker replaces the
// identity-sentinel trick with an explicit tag so no reference comparison
// is needed.
type Entry struct {
	Msg    *Message
	Closed bool
}

// Queue is the bounded FIFO between the single reader goroutine and the
// single dispatcher goroutine. Put blocks while the queue is full; Poll
// waits up to a timeout for an entry. Entries that have not yet been
// dispatched can be removed by request id, which is how $/cancelRequest
// takes effect before dispatch.
type Queue struct {
	mu      sync.Mutex
	entries []Entry

	capacity int

	// putSig and takeSig carry at most one pending pulse each; the waiting
	// side re-checks state under the lock after every wakeup.
	putSig  chan struct{}
	takeSig chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a queue holding at most capacity entries.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		capacity: capacity,
		putSig:   make(chan struct{}, 1),
		takeSig:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Put enqueues a decoded message, blocking while the queue is full.
func (q *Queue) Put(msg *Message) error {
	return q.put(Entry{Msg: msg})
}

// PutClosed enqueues the stream-closure marker.
func (q *Queue) PutClosed() error {
	return q.put(Entry{Closed: true})
}

func (q *Queue) put(e Entry) error {
	for {
		q.mu.Lock()
		if len(q.entries) < q.capacity {
			q.entries = append(q.entries, e)
			q.mu.Unlock()
			pulse(q.putSig)
			return nil
		}
		q.mu.Unlock()

		select {
		case <-q.takeSig:
		case <-q.done:
			return ErrQueueClosed
		}
	}
}

// Poll dequeues the oldest entry, waiting up to timeout for one to arrive.
// The second return value is false on timeout or when the queue is closed.
func (q *Queue) Poll(timeout time.Duration) (Entry, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.entries) > 0 {
			e := q.entries[0]
			q.entries = q.entries[1:]
			q.mu.Unlock()
			pulse(q.takeSig)
			return e, true
		}
		q.mu.Unlock()

		select {
		case <-q.putSig:
		case <-deadline.C:
			return Entry{}, false
		case <-q.done:
			return Entry{}, false
		}
	}
}

// Remove deletes every not-yet-dispatched request with the given id and
// reports whether anything was removed. A miss is not an error: the request
// may already be dispatched, completed, or unknown.
func (q *Queue) Remove(id int64) bool {
	q.mu.Lock()
	kept := q.entries[:0]
	removed := false
	for _, e := range q.entries {
		if e.Msg != nil && e.Msg.ID != nil && *e.Msg.ID == id {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	q.mu.Unlock()

	if removed {
		pulse(q.takeSig)
	}
	return removed
}

// Len reports the number of buffered entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Close releases any blocked Put or Poll. Called by the dispatcher once its
// loop exits so the reader never stays parked on a full queue.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

func pulse(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
