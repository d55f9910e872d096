// Пакет debounce откладывает уведомление об изменении документа, пока правки идут подряд.
package debounce

import (
	"sync"
	"time"
)

const DefaultDelay = 300 * time.Millisecond

// Notifier доставляет последнее значение после паузы delay без новых вызовов Notify.
// Каждый Notify перезапускает таймер, Close сбрасывает отложенное значение.
type Notifier[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	pending T
	has     bool
	gen     uint64
	closed  bool
}

// New создает Notifier. delay <= 0 означает DefaultDelay.
func New[T any](delay time.Duration, fn func(T)) *Notifier[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Notifier[T]{delay: delay, fn: fn}
}

// Notify запоминает значение и перезапускает таймер.
func (n *Notifier[T]) Notify(v T) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.pending = v
	n.has = true
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
	}
	gen := n.gen
	n.timer = time.AfterFunc(n.delay, func() {
		n.fire(gen)
	})
}

func (n *Notifier[T]) fire(gen uint64) {
	n.mu.Lock()
	if !n.has || gen != n.gen {
		// таймер успел сработать до перезапуска
		n.mu.Unlock()
		return
	}
	v := n.take()
	n.mu.Unlock()
	n.fn(v)
}

// take забирает отложенное значение. Вызывается под mu.
func (n *Notifier[T]) take() T {
	v := n.pending
	var zero T
	n.pending = zero
	n.has = false
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	return v
}

// Pending есть ли недоставленное значение.
func (n *Notifier[T]) Pending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.has
}

// Flush доставляет отложенное значение немедленно. false, если доставлять нечего.
func (n *Notifier[T]) Flush() bool {
	n.mu.Lock()
	if !n.has || n.closed {
		n.mu.Unlock()
		return false
	}
	v := n.take()
	n.mu.Unlock()
	n.fn(v)
	return true
}

// Close останавливает таймер без доставки. Последующие Notify игнорируются.
func (n *Notifier[T]) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.take()
	n.closed = true
}
