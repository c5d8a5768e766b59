package walker

import (
	"sync"

	"github.com/arthur-debert/wd40/pkg/ignore"
)

// node is one pending directory
type node struct {
	path    string
	depth   int
	ignores *ignore.Stack
}

// queue is the shared FIFO of pending directories. pop blocks while the
// queue is empty but some worker may still push children; once it is empty
// and nobody is active the walk is over.
type queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []node
	active int
	closed bool
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) push(n node) {
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
	q.cond.Signal()
}

// pop returns the next directory and marks the caller active. It returns
// false when the walk is finished or the queue was closed.
func (q *queue) pop() (node, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && q.active > 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed || len(q.items) == 0 {
		return node{}, false
	}
	n := q.items[0]
	q.items[0] = node{}
	q.items = q.items[1:]
	q.active++
	return n, true
}

// done marks the caller idle again
func (q *queue) done() {
	q.mu.Lock()
	q.active--
	finished := q.active == 0 && len(q.items) == 0
	q.mu.Unlock()
	if finished {
		q.cond.Broadcast()
	}
}

// close wakes every waiting worker and makes further pops fail
func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// visitedSet records directories already handed to a worker
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// add returns false if path was already present
func (v *visitedSet) add(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[path]; ok {
		return false
	}
	v.seen[path] = struct{}{}
	return true
}

func (v *visitedSet) len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
