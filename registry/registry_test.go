package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/wirebus/errors"
)

func TestInsertAndLookup(t *testing.T) {
	r := New()

	entry := Entry{
		ID:               "sub-1",
		Kind:             KindSubscription,
		Topic:            "/test",
		NodeID:           "node-1",
		ImplementationID: "wirebus_channelbus",
	}
	require.NoError(t, r.Insert(entry))

	got, ok := r.Lookup("sub-1")
	require.True(t, ok)
	assert.Equal(t, entry, got)
	assert.True(t, r.Contains("sub-1"))
	assert.Equal(t, 1, r.Len())
}

func TestInsertRejectsDuplicates(t *testing.T) {
	r := New()

	entry := Entry{ID: "pub-1", Kind: KindPublisher, Topic: "/test", ImplementationID: "wirebus_channelbus"}
	require.NoError(t, r.Insert(entry))

	err := r.Insert(entry)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
	assert.Equal(t, 1, r.Len())
}

func TestInsertRejectsBadEntries(t *testing.T) {
	r := New()

	err := r.Insert(Entry{Kind: KindNode, ImplementationID: "x"})
	assert.Error(t, err, "empty ID must be rejected")

	err = r.Insert(Entry{ID: "node-1", Kind: KindNode})
	assert.Error(t, err, "empty implementation ID must be rejected")

	assert.Equal(t, 0, r.Len())
}

func TestRemove(t *testing.T) {
	r := New()
	require.NoError(t, r.Insert(Entry{ID: "sub-1", Kind: KindSubscription, ImplementationID: "x"}))

	require.NoError(t, r.Remove("sub-1"))
	assert.False(t, r.Contains("sub-1"))
	assert.Equal(t, 0, r.Len())
}

func TestRemoveIsNotIdempotent(t *testing.T) {
	r := New()
	require.NoError(t, r.Insert(Entry{ID: "sub-1", Kind: KindSubscription, ImplementationID: "x"}))
	require.NoError(t, r.Remove("sub-1"))

	// The second remove of the same handle is a caller error, not a no-op.
	err := r.Remove("sub-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotRegistered)
}

func TestRemoveUnknownHandle(t *testing.T) {
	r := New()

	err := r.Remove("never-registered")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotRegistered)

	assert.Error(t, r.Remove(""))
}

func TestCounts(t *testing.T) {
	r := New()
	require.NoError(t, r.Insert(Entry{ID: "node-1", Kind: KindNode, ImplementationID: "x"}))
	require.NoError(t, r.Insert(Entry{
		ID: "pub-1", Kind: KindPublisher, Topic: "/chatter", NodeID: "node-1", ImplementationID: "x"}))
	require.NoError(t, r.Insert(Entry{
		ID: "sub-1", Kind: KindSubscription, Topic: "/chatter", NodeID: "node-1", ImplementationID: "x"}))
	require.NoError(t, r.Insert(Entry{
		ID: "sub-2", Kind: KindSubscription, Topic: "/other", NodeID: "node-1", ImplementationID: "x"}))

	assert.Equal(t, 1, r.CountByKind(KindNode))
	assert.Equal(t, 1, r.CountByKind(KindPublisher))
	assert.Equal(t, 2, r.CountByKind(KindSubscription))

	assert.Equal(t, 1, r.CountByTopic("/chatter", KindSubscription))
	assert.Equal(t, 1, r.CountByTopic("/chatter", KindPublisher))
	assert.Equal(t, 0, r.CountByTopic("/chatter", KindNode))

	owned := r.ListByNode("node-1")
	assert.Len(t, owned, 3)
}

func TestConcurrentAccess(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("sub-%d", n)
			if err := r.Insert(Entry{
				ID: id, Kind: KindSubscription, Topic: "/load", ImplementationID: "x"}); err != nil {
				t.Error(err)
				return
			}
			// Lookups interleave with inserts and removes on other entries.
			_, _ = r.Lookup(id)
			_ = r.CountByTopic("/load", KindSubscription)
			if err := r.Remove(id); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}

func TestEntityKindString(t *testing.T) {
	assert.Equal(t, "node", KindNode.String())
	assert.Equal(t, "publisher", KindPublisher.String())
	assert.Equal(t, "subscription", KindSubscription.String())
	assert.Equal(t, "unknown", EntityKind(42).String())
}
