package event

import (
	"reflect"
	"sync"
)

// Cancellable is implemented by pre-events. A handler that calls Cancel
// vetoes the mutation the event announces.
type Cancellable interface {
	Cancel()
	Cancelled() bool
}

// Bus is a synchronous typed event bus. Handlers run inline on the
// emitter's goroutine in registration order; pre-events may be cancelled,
// post-events are informational only.
type Bus struct {
	mu       sync.RWMutex // protects handler registration
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]any),
	}
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// EmitPre dispatches a cancellable pre-event. Dispatch stops at the first
// handler that cancels. Returns true when no handler vetoed. A handler
// that never returns stalls the emitting call; acceptable under the
// cooperative single-dispatcher model, but keep handlers short.
func EmitPre[T Cancellable](b *Bus, ev T) bool {
	for _, h := range b.snapshot(reflect.TypeOf((*T)(nil)).Elem()) {
		h.(func(T))(ev)
		if ev.Cancelled() {
			return false
		}
	}
	return true
}

// EmitPost dispatches an informational post-event to all handlers.
func EmitPost[T any](b *Bus, ev T) {
	for _, h := range b.snapshot(reflect.TypeOf((*T)(nil)).Elem()) {
		h.(func(T))(ev)
	}
}

func (b *Bus) snapshot(t reflect.Type) []any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.handlers[t]
}
