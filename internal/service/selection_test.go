package service

import (
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionDefaultsToFirst(t *testing.T) {
	s := NewSelectionStore(testCatalog(t))
	assert.Equal(t, "h1", s.CurrentID())
	assert.Equal(t, "h1", s.Current().ID)
}

func TestSelectRoundTrip(t *testing.T) {
	c := testCatalog(t)
	s := NewSelectionStore(c)

	for _, f := range c.List() {
		require.NoError(t, s.Select(f.ID))
		assert.Equal(t, f.ID, s.Current().ID)
		assert.Equal(t, f.Name, s.Current().Name)
	}
}

func TestSelectUnknownLeavesSelection(t *testing.T) {
	s := NewSelectionStore(testCatalog(t))
	require.NoError(t, s.Select("h2"))

	calls := 0
	s.Subscribe(func(Facility) { calls++ })

	err := s.Select("nope")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrUnknownFacility))
	assert.Equal(t, "h2", s.CurrentID())
	assert.Zero(t, calls)
}

func TestSubscribersNotifiedInOrderBeforeReturn(t *testing.T) {
	s := NewSelectionStore(testCatalog(t))

	var seen []string
	s.Subscribe(func(f Facility) {
		// Readers inside a notification already observe the new selection.
		seen = append(seen, "first:"+f.ID+":"+s.CurrentID())
	})
	s.Subscribe(func(f Facility) {
		seen = append(seen, "second:"+f.ID)
	})

	require.NoError(t, s.Select("h3"))
	assert.Equal(t, []string{"first:h3:h3", "second:h3"}, seen)
}

func TestSelectSameIDTwiceNotifiesTwice(t *testing.T) {
	s := NewSelectionStore(testCatalog(t))
	calls := 0
	s.Subscribe(func(Facility) { calls++ })

	require.NoError(t, s.Select("h4"))
	require.NoError(t, s.Select("h4"))
	assert.Equal(t, 2, calls)
	assert.Equal(t, "h4", s.CurrentID())
}

func TestUnsubscribe(t *testing.T) {
	s := NewSelectionStore(testCatalog(t))
	calls := 0
	unsub := s.Subscribe(func(Facility) { calls++ })

	require.NoError(t, s.Select("h2"))
	unsub()
	unsub()
	require.NoError(t, s.Select("h3"))
	assert.Equal(t, 1, calls)
}

func TestSubscriberSelectsAfterSelectReturns(t *testing.T) {
	s := NewSelectionStore(testCatalog(t))

	done := make(chan error, 1)
	var once sync.Once
	s.Subscribe(func(f Facility) {
		if f.ID != "h2" {
			return
		}
		// Re-selecting from inside the callback would deadlock; hand it off.
		once.Do(func() {
			go func() { done <- s.Select("h3") }()
		})
	})

	require.NoError(t, s.Select("h2"))
	require.NoError(t, <-done)
	assert.Equal(t, "h3", s.CurrentID())
}
