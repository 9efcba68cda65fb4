package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koalaroute/koalaroute/models"
)

func TestSearchRegistry_SnapshotUnknownID(t *testing.T) {
	registry := NewSearchRegistry(time.Minute)

	result, err := registry.Snapshot("no-such-search")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrHandleNotFound)
}

func TestSearchRegistry_SnapshotCopiesOffers(t *testing.T) {
	registry := NewSearchRegistry(time.Minute)
	entry := registry.Create("s-1", "usd", []string{"amadeus"})
	entry.appendOffers([]models.FlightOffer{{ID: "offer-1", Price: 12000}})

	first, err := registry.Snapshot("s-1")
	require.NoError(t, err)
	require.Len(t, first.Offers, 1)

	// Mutating the snapshot must not reach back into the registry.
	first.Offers[0].ID = "mangled"

	second, err := registry.Snapshot("s-1")
	require.NoError(t, err)
	assert.Equal(t, "offer-1", second.Offers[0].ID)
}

func TestSearchRegistry_SnapshotReflectsProgress(t *testing.T) {
	registry := NewSearchRegistry(time.Minute)
	entry := registry.Create("s-2", "eur", []string{"travelpayouts", "duffel"})
	entry.setState(models.StatePolling)

	result, err := registry.Snapshot("s-2")
	require.NoError(t, err)
	assert.Equal(t, models.StatePolling, result.State)
	assert.Empty(t, result.Offers)

	entry.appendOffers([]models.FlightOffer{{ID: "a"}, {ID: "b"}})
	entry.setState(models.StateComplete)

	result, err = registry.Snapshot("s-2")
	require.NoError(t, err)
	assert.Equal(t, models.StateComplete, result.State)
	assert.Len(t, result.Offers, 2)
	assert.Equal(t, []string{"travelpayouts", "duffel"}, result.Providers)
}

func TestSearchRegistry_SnapshotExpired(t *testing.T) {
	registry := NewSearchRegistry(time.Minute)
	registry.Create("s-3", "usd", nil)

	registry.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	result, err := registry.Snapshot("s-3")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrHandleExpired)
}

func TestSearchRegistry_Prune(t *testing.T) {
	registry := NewSearchRegistry(time.Minute)
	registry.Create("old-1", "usd", nil)
	registry.Create("old-2", "usd", nil)

	// Entries created after the first batch get a later deadline.
	registry.now = func() time.Time { return time.Now().Add(30 * time.Minute) }
	registry.Create("fresh", "usd", nil)

	pruned := registry.Prune(time.Now().Add(10 * time.Minute))
	assert.Equal(t, 2, pruned)
	assert.Equal(t, 1, registry.Len())

	_, err := registry.Snapshot("fresh")
	assert.NoError(t, err)
}

func TestSearchEntry_TerminalStateSticky(t *testing.T) {
	registry := NewSearchRegistry(time.Minute)
	entry := registry.Create("s-4", "usd", nil)

	entry.setState(models.StateComplete)
	entry.setState(models.StateFailed)

	result, err := registry.Snapshot("s-4")
	require.NoError(t, err)
	assert.Equal(t, models.StateComplete, result.State)
}

func TestSearchEntry_AppendEmptyChunkIsNoop(t *testing.T) {
	registry := NewSearchRegistry(time.Minute)
	entry := registry.Create("s-5", "usd", nil)

	entry.appendOffers(nil)
	entry.appendOffers([]models.FlightOffer{})

	result, err := registry.Snapshot("s-5")
	require.NoError(t, err)
	assert.Empty(t, result.Offers)
}
