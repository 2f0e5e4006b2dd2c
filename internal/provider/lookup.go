package provider

// State classifies a provider read result.
type State int

const (
	// Found means the value was resolved from live provider data.
	Found State = iota
	// NotFound is a confirmed miss: the provider answered and the entity
	// does not exist.
	NotFound
	// Unavailable means the backing clan system could not answer; the
	// zero value carried alongside is a default, not a fact.
	Unavailable
)

// Lookup carries a provider read result together with how trustworthy it
// is. Callers that only want a flat default can use Or; callers that
// care whether "empty" was confirmed or degraded inspect State.
type Lookup[T any] struct {
	Value T
	State State
}

func Hit[T any](v T) Lookup[T] {
	return Lookup[T]{Value: v, State: Found}
}

func Miss[T any]() Lookup[T] {
	return Lookup[T]{State: NotFound}
}

func Degraded[T any]() Lookup[T] {
	return Lookup[T]{State: Unavailable}
}

// Found reports whether the lookup resolved a live value.
func (l Lookup[T]) Found() bool {
	return l.State == Found
}

// Or returns the resolved value, or def when the lookup missed or the
// provider was unavailable.
func (l Lookup[T]) Or(def T) T {
	if l.State == Found {
		return l.Value
	}
	return def
}
