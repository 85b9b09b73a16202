package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusFanOut(t *testing.T) {
	b := NewEventBus()
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish(Event{Resource: ResourceSelection, Action: ActionSelected, ID: "h2"})

	for _, ch := range []chan Event{a, c} {
		select {
		case ev := <-ch:
			assert.Equal(t, "h2", ev.ID)
		default:
			t.Fatal("event not delivered")
		}
	}

	b.Unsubscribe(a)
	_, open := <-a
	assert.False(t, open)
}

func TestEventBusDropsWhenFull(t *testing.T) {
	b := NewEventBus()
	ch := b.Subscribe()
	for i := 0; i < cap(ch)+5; i++ {
		b.Publish(Event{Resource: ResourceMap, Action: ActionCamera})
	}
	require.Len(t, ch, cap(ch))
}

func TestNilEventBusPublish(t *testing.T) {
	var b *EventBus
	assert.NotPanics(t, func() { b.Publish(Event{}) })
}
