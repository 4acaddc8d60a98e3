package frontier

import (
	"hash/fnv"
	"sync"
)

// Visited remembers URLs already handed out so duplicate seeds are crawled once.
type Visited struct {
	mu  sync.Mutex
	set map[uint64]struct{}
}

func NewVisited() *Visited {
	return &Visited{
		set: make(map[uint64]struct{}),
	}
}

func hash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// MarkNew records u and reports whether it had not been seen before.
func (v *Visited) MarkNew(u string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	k := hash(u)
	if _, ok := v.set[k]; ok {
		return false
	}
	v.set[k] = struct{}{}
	return true
}

// Size is the number of distinct URLs recorded.
func (v *Visited) Size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.set)
}
