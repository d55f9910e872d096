package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	values []int
	done   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) add(v int) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) get() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values...)
}

func TestNotifier(t *testing.T) {
	t.Run("coalesces rapid edits", func(t *testing.T) {
		rec := newRecorder()
		n := New(20*time.Millisecond, rec.add)
		for i := 1; i <= 5; i++ {
			n.Notify(i)
		}
		select {
		case <-rec.done:
		case <-time.After(2 * time.Second):
			t.Fatal("notification was not delivered")
		}
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, []int{5}, rec.get())
		assert.False(t, n.Pending())
	})

	t.Run("flush delivers immediately", func(t *testing.T) {
		rec := newRecorder()
		n := New(time.Hour, rec.add)
		n.Notify(1)
		require.True(t, n.Pending())
		assert.True(t, n.Flush())
		assert.Equal(t, []int{1}, rec.get())
		assert.False(t, n.Flush())
	})

	t.Run("close drops pending value", func(t *testing.T) {
		rec := newRecorder()
		n := New(10*time.Millisecond, rec.add)
		n.Notify(1)
		n.Close()
		n.Notify(2)
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, rec.get())
		assert.False(t, n.Pending())
	})

	t.Run("default delay", func(t *testing.T) {
		n := New(0, func(int) {})
		assert.Equal(t, DefaultDelay, n.delay)
	})
}
