package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-backend/internal/domain"
)

func ts(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return &parsed
}

func TestStoreDefaultsToUnchecked(t *testing.T) {
	store := NewStatusStore()

	st := store.Get(domain.StatusKey{AttendeeID: 1, StationID: 2})
	assert.False(t, st.Checked())
	assert.Equal(t, 1, st.Quantity)
}

func TestStoreApplyEventIdempotent(t *testing.T) {
	store := NewStatusStore()
	event := domain.ChangeEvent{
		Type:       domain.EventInsert,
		Table:      StatusTable,
		AttendeeID: 1,
		StationID:  2,
		CheckedAt:  ts(t, "2025-08-01T10:00:00Z"),
		Quantity:   3,
	}

	store.ApplyEvent(event)
	once := store.Get(event.Key())

	store.ApplyEvent(event)
	twice := store.Get(event.Key())

	assert.Equal(t, once, twice)
	assert.Equal(t, 1, store.Len())
}

func TestStoreDeleteEventClearsSlot(t *testing.T) {
	store := NewStatusStore()
	key := domain.StatusKey{AttendeeID: 1, StationID: 2}

	store.ApplyEvent(domain.ChangeEvent{
		Type: domain.EventInsert, Table: StatusTable,
		AttendeeID: 1, StationID: 2,
		CheckedAt: ts(t, "2025-08-01T10:00:00Z"), Quantity: 2,
	})
	require.True(t, store.Checked(key))

	store.ApplyEvent(domain.ChangeEvent{
		Type: domain.EventDelete, Table: StatusTable,
		AttendeeID: 1, StationID: 2,
	})

	assert.False(t, store.Checked(key))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, domain.Unchecked(), store.Get(key))
}

func TestStoreLastWriterWinsPerKey(t *testing.T) {
	store := NewStatusStore()
	key := domain.StatusKey{AttendeeID: 7, StationID: 1}

	// Two operators race on the same slot; the later-delivered event
	// wins regardless of timestamps.
	first := domain.ChangeEvent{
		Type: domain.EventUpdate, Table: StatusTable,
		AttendeeID: 7, StationID: 1,
		CheckedAt: ts(t, "2025-08-01T10:00:05Z"), Quantity: 3,
	}
	second := domain.ChangeEvent{
		Type: domain.EventUpdate, Table: StatusTable,
		AttendeeID: 7, StationID: 1,
		CheckedAt: ts(t, "2025-08-01T10:00:01Z"), Quantity: 1,
	}

	store.ApplyEvent(first)
	store.ApplyEvent(second)

	got := store.Get(key)
	assert.Equal(t, second.CheckedAt, got.CheckedAt)
	assert.Equal(t, 1, got.Quantity)
}

func TestStoreOptimisticRollback(t *testing.T) {
	store := NewStatusStore()
	key := domain.StatusKey{AttendeeID: 3, StationID: 4}

	checkedAt := ts(t, "2025-08-01T09:00:00Z")
	store.ApplyEvent(domain.ChangeEvent{
		Type: domain.EventInsert, Table: StatusTable,
		AttendeeID: 3, StationID: 4, CheckedAt: checkedAt, Quantity: 2,
	})
	before := store.Get(key)

	newAt := ts(t, "2025-08-01T11:00:00Z")
	prev := store.ApplyOptimistic(key, domain.CheckInStatus{CheckedAt: newAt, Quantity: 4})
	assert.Equal(t, before, prev)
	assert.Equal(t, 4, store.Get(key).Quantity)

	store.Rollback(key, prev)
	assert.Equal(t, before, store.Get(key))
}

func TestStoreRollbackToAbsence(t *testing.T) {
	store := NewStatusStore()
	key := domain.StatusKey{AttendeeID: 5, StationID: 6}

	prev := store.ApplyOptimistic(key, domain.CheckInStatus{CheckedAt: ts(t, "2025-08-01T10:00:00Z"), Quantity: 1})
	require.True(t, store.Checked(key))

	store.Rollback(key, prev)
	assert.False(t, store.Checked(key))
	assert.Equal(t, 0, store.Len())
}

func TestStoreReplaceAllDropsStaleSlots(t *testing.T) {
	store := NewStatusStore()
	store.ApplyEvent(domain.ChangeEvent{
		Type: domain.EventInsert, Table: StatusTable,
		AttendeeID: 1, StationID: 1, CheckedAt: ts(t, "2025-08-01T10:00:00Z"), Quantity: 1,
	})

	fresh := map[domain.StatusKey]domain.CheckInStatus{
		{AttendeeID: 2, StationID: 1}: {CheckedAt: ts(t, "2025-08-01T10:05:00Z"), Quantity: 2},
		{AttendeeID: 3, StationID: 1}: domain.Unchecked(), // unchecked rows are not kept
	}
	store.ReplaceAll(fresh)

	assert.False(t, store.Checked(domain.StatusKey{AttendeeID: 1, StationID: 1}))
	assert.True(t, store.Checked(domain.StatusKey{AttendeeID: 2, StationID: 1}))
	assert.Equal(t, 1, store.Len())
}

func TestStoreStatusesFor(t *testing.T) {
	store := NewStatusStore()
	store.ApplyEvent(domain.ChangeEvent{
		Type: domain.EventInsert, Table: StatusTable,
		AttendeeID: 1, StationID: 10, CheckedAt: ts(t, "2025-08-01T10:00:00Z"), Quantity: 2,
	})
	store.ApplyEvent(domain.ChangeEvent{
		Type: domain.EventInsert, Table: StatusTable,
		AttendeeID: 2, StationID: 10, CheckedAt: ts(t, "2025-08-01T10:01:00Z"), Quantity: 1,
	})

	got := store.StatusesFor([]uint{1, 3})

	require.Contains(t, got, uint(1))
	assert.NotContains(t, got, uint(2))
	assert.NotContains(t, got, uint(3))
	assert.Equal(t, 2, got[1][10].Quantity)
}
