package linkedqueue

import (
	"runtime"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPullEmpty(t *testing.T) {
	q := New[int]()
	_, ok := q.Pull()
	assert.False(t, ok)
}

func TestSingleProducerFIFO(t *testing.T) {
	q := New[string]()
	for _, s := range []string{"x", "y", "z"} {
		q.Push(s)
	}

	for _, want := range []string{"x", "y", "z"} {
		got, ok := q.Pull()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestDrainThenClear(t *testing.T) {
	q := New[string]()
	q.Push("x")
	q.Push("y")
	q.Push("z")

	got, ok := q.Pull()
	require.True(t, ok)
	assert.Equal(t, "x", got)

	q.Clear()

	_, ok = q.Pull()
	assert.False(t, ok)

	q.Push("again")
	got, ok = q.Pull()
	require.True(t, ok)
	assert.Equal(t, "again", got)
}

func TestEmplaceLinksConstructedValue(t *testing.T) {
	q := New[int]()
	calls := 0
	q.Emplace(func() int {
		calls++
		return 42
	})
	assert.Equal(t, 1, calls)

	v, ok := q.Pull()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

// TestUnboundedConcurrentProducers is the linked analogue of "10000
// messages while consumer concurrently pulls" from the spec's concrete
// scenarios: the final delivered set is complete and, per producer, in
// push order.
func TestUnboundedConcurrentProducers(t *testing.T) {
	const (
		producers   = 8
		perProducer = 1250
		total       = producers * perProducer
	)

	q := New[[2]int]() // [producer, sequence]

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push([2]int{id, i})
			}
		}(p)
	}

	perProducerSeen := make([][]int, producers)
	received := 0
	for received < total {
		v, ok := q.Pull()
		if !ok {
			runtime.Gosched()
			continue
		}
		perProducerSeen[v[0]] = append(perProducerSeen[v[0]], v[1])
		received++
	}
	wg.Wait()

	for p := 0; p < producers; p++ {
		require.Len(t, perProducerSeen[p], perProducer)
		assert.True(t, sort.IntsAreSorted(perProducerSeen[p]), "producer %d's messages arrived out of order", p)
	}
}
