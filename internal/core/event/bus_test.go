package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testPre struct {
	cancelled bool
	n         int
}

func (e *testPre) Cancel()         { e.cancelled = true }
func (e *testPre) Cancelled() bool { return e.cancelled }

type testPost struct{ n int }

func TestEmitPostOrder(t *testing.T) {
	b := NewBus()

	var order []int
	Subscribe(b, func(*testPost) { order = append(order, 1) })
	Subscribe(b, func(*testPost) { order = append(order, 2) })
	Subscribe(b, func(*testPost) { order = append(order, 3) })

	EmitPost(b, &testPost{})
	assert.Equal(t, []int{1, 2, 3}, order, "handlers run in registration order")
}

func TestEmitPreStopsAtFirstCancel(t *testing.T) {
	b := NewBus()

	var called []int
	Subscribe(b, func(ev *testPre) { called = append(called, 1) })
	Subscribe(b, func(ev *testPre) {
		called = append(called, 2)
		ev.Cancel()
	})
	Subscribe(b, func(ev *testPre) { called = append(called, 3) })

	ok := EmitPre(b, &testPre{})
	assert.False(t, ok)
	assert.Equal(t, []int{1, 2}, called, "dispatch stops at the cancelling handler")
}

func TestEmitPreAccepted(t *testing.T) {
	b := NewBus()

	Subscribe(b, func(ev *testPre) { ev.n++ })
	ev := &testPre{}
	assert.True(t, EmitPre(b, ev))
	assert.Equal(t, 1, ev.n, "handlers may mutate the event")
}

func TestEmitNoSubscribers(t *testing.T) {
	b := NewBus()
	assert.True(t, EmitPre(b, &testPre{}))
	EmitPost(b, &testPost{})
}

func TestSubscribeTypeIsolation(t *testing.T) {
	b := NewBus()

	preFired, postFired := false, false
	Subscribe(b, func(*testPre) { preFired = true })
	Subscribe(b, func(*testPost) { postFired = true })

	EmitPost(b, &testPost{})
	assert.False(t, preFired)
	assert.True(t, postFired)
}
