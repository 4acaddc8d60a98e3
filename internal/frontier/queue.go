package frontier

import "sync"

// Queue is a FIFO of seed URLs waiting for the dispatcher.
type Queue struct {
	mu          sync.Mutex
	elements    []string
	totalQueued int
}

func NewQueue() *Queue {
	return &Queue{
		elements: make([]string, 0),
	}
}

func (q *Queue) Enqueue(u string) {
	q.mu.Lock()
	q.elements = append(q.elements, u)
	q.totalQueued++
	q.mu.Unlock()
}

// PopFront removes the oldest URL; seeds are crawled in input order.
func (q *Queue) PopFront() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.elements) == 0 {
		return "", false
	}
	u := q.elements[0]
	q.elements[0] = ""
	q.elements = q.elements[1:]
	return u, true
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.elements)
}

func (q *Queue) TotalQueued() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.totalQueued
}
