package mailbox

import (
	"sync"

	"github.com/eapache/queue"
)

// deliveryQueue buffers completed operations between the dispatcher and the
// delivery goroutine, so handlers observe completions in the order the
// dispatcher drained them while never stalling the dispatcher itself.
type deliveryQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  *queue.Queue
	closed bool
}

func newDeliveryQueue() *deliveryQueue {
	q := &deliveryQueue{items: queue.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *deliveryQueue) push(item any) {
	q.mu.Lock()
	if !q.closed {
		q.items.Add(item)
		q.cond.Signal()
	}
	q.mu.Unlock()
}

// pop blocks until an item is available or the queue has been closed and
// drained. The boolean is false only on a drained, closed queue.
func (q *deliveryQueue) pop() (any, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.items.Length() == 0 {
		if q.closed {
			return nil, false
		}
		q.cond.Wait()
	}
	return q.items.Remove(), true
}

func (q *deliveryQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}
