package application

import (
	"testing"

	"github.com/bnema/inline-edit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOpenReturnsExistingSession(t *testing.T) {
	registry := NewRegistry[string]()
	clock := testutil.NewManualClock(testEpoch)
	created := 0
	create := func() *Session[string] {
		created++
		return NewSession(SessionOptions[string]{ID: "doc", Clock: clock})
	}

	first, ok := registry.Open("doc", create)
	require.True(t, ok)
	second, ok := registry.Open("doc", create)
	require.False(t, ok)

	assert.Same(t, first, second)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryCloseDisposesSession(t *testing.T) {
	registry := NewRegistry[string]()
	clock := testutil.NewManualClock(testEpoch)
	session, _ := registry.Open("doc", func() *Session[string] {
		return NewSession(SessionOptions[string]{ID: "doc", Clock: clock})
	})
	session.StartEditing()
	session.UpdateContent("x")
	require.Equal(t, 1, clock.Pending())

	assert.True(t, registry.Close("doc"))
	assert.False(t, registry.Close("doc"))
	assert.Zero(t, clock.Pending())

	_, ok := registry.Get("doc")
	assert.False(t, ok)
}

func TestRegistryCloseAllAndIDs(t *testing.T) {
	registry := NewRegistry[int]()
	clock := testutil.NewManualClock(testEpoch)
	for _, id := range []string{"b", "c", "a"} {
		registry.Open(id, func() *Session[int] {
			return NewSession(SessionOptions[int]{ID: id, Clock: clock})
		})
	}

	assert.Equal(t, []string{"a", "b", "c"}, registry.IDs())

	registry.CloseAll()
	assert.Zero(t, registry.Len())
	assert.Empty(t, registry.IDs())
}
