package verificationscheduler

import (
	"container/list"
	"sync"

	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
)

// requestQueue is a bounded FIFO of requests waiting for a worker. A request
// can be removed before a worker takes it, which frees its slot.
type requestQueue struct {
	lock     sync.Mutex
	nonEmpty *sync.Cond
	requests *list.List
	closed   bool
	capacity int
}

func newRequestQueue(capacity int) *requestQueue {
	q := &requestQueue{
		requests: list.New(),
		capacity: capacity,
	}
	q.nonEmpty = sync.NewCond(&q.lock)
	return q
}

// enqueue never blocks: it fails with ErrOverloaded when the queue is full
func (q *requestQueue) enqueue(request *Request) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.closed {
		return errors.WithStack(ErrSchedulerStopped)
	}
	if q.requests.Len() >= q.capacity {
		return errors.Wrapf(ruleerrors.ErrOverloaded, "verification queue reached capacity of %d", q.capacity)
	}
	request.queueElement = q.requests.PushBack(request)
	q.nonEmpty.Signal()
	return nil
}

// dequeue blocks until a request is available. It returns false once the
// queue is closed and empty.
func (q *requestQueue) dequeue() (*Request, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	for q.requests.Len() == 0 && !q.closed {
		q.nonEmpty.Wait()
	}
	return q.popFront()
}

// tryDequeue returns a request if one is immediately available
func (q *requestQueue) tryDequeue() (*Request, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.popFront()
}

// popFront must be called with the lock held
func (q *requestQueue) popFront() (*Request, bool) {
	front := q.requests.Front()
	if front == nil {
		return nil, false
	}
	request := q.requests.Remove(front).(*Request)
	request.queueElement = nil
	return request, true
}

// remove takes request out of the queue. It returns false if a worker
// already dequeued it.
func (q *requestQueue) remove(request *Request) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	if request.queueElement == nil {
		return false
	}
	q.requests.Remove(request.queueElement)
	request.queueElement = nil
	return true
}

func (q *requestQueue) length() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.requests.Len()
}

func (q *requestQueue) close() {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.closed = true
	q.nonEmpty.Broadcast()
}
