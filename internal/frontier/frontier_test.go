package frontier

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	_, ok := q.PopFront()
	assert.False(t, ok)

	for _, u := range []string{"a", "b", "c"} {
		q.Enqueue(u)
	}
	assert.Equal(t, 3, q.Size())

	var got []string
	for {
		u, ok := q.PopFront()
		if !ok {
			break
		}
		got = append(got, u)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Zero(t, q.Size())
	assert.Equal(t, 3, q.TotalQueued())
}

func TestVisitedMarkNew(t *testing.T) {
	v := NewVisited()
	assert.True(t, v.MarkNew("https://example.com/"))
	assert.False(t, v.MarkNew("https://example.com/"))
	assert.Equal(t, 1, v.Size())
	assert.True(t, v.MarkNew("https://example.org/"))
	assert.Equal(t, 2, v.Size())
}

func TestVisitedConcurrent(t *testing.T) {
	v := NewVisited()
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if v.MarkNew(fmt.Sprintf("https://example.com/%d", i)) {
					mu.Lock()
					fresh++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 100, fresh)
	assert.Equal(t, 100, v.Size())
}
