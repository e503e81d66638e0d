package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/retry"
	"checkpoint-backend/internal/roles"
)

type fakeWriter struct {
	upserts    int
	clears     int
	failWrites int // fail the first N writes
}

func (w *fakeWriter) UpsertStatus(_ context.Context, _ domain.StatusKey, _ time.Time, _ int) error {
	w.upserts++
	if w.upserts <= w.failWrites {
		return errors.New("store unavailable")
	}
	return nil
}

func (w *fakeWriter) ClearStatus(_ context.Context, _ domain.StatusKey) error {
	w.clears++
	if w.clears <= w.failWrites {
		return errors.New("store unavailable")
	}
	return nil
}

var (
	mainStation    = domain.Station{ID: 1, Name: "Shabebik Desk", IsEnabled: true, IsMain: true, SortOrder: 1}
	medicalStation = domain.Station{ID: 2, Name: "Medical Check", IsEnabled: true, SortOrder: 2}
	testAttendee   = domain.Attendee{ID: 100, Name: "Hassan", RecordNumber: "12/345", Quantity: 3}

	superAdmin = domain.Profile{ID: 1, Role: roles.SuperAdmin}
	admin      = domain.Profile{ID: 2, Role: roles.Admin}
	medic      = domain.Profile{ID: 3, Role: roles.Medical}
)

func newTestEngine(writer *fakeWriter) (*Engine, *StatusStore) {
	store := NewStatusStore()
	catalog := NewCatalog()
	catalog.Replace([]domain.Station{mainStation, medicalStation})

	engine := NewEngine(store, catalog, writer)
	engine.policy = retry.Policy{MaxRetries: 3, BaseDelay: time.Millisecond}
	engine.now = func() time.Time { return time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC) }

	return engine, store
}

func TestEngineGatingInvariant(t *testing.T) {
	engine, store := newTestEngine(&fakeWriter{})

	// Main station unchecked: no non-super-admin may touch other stations.
	_, err := engine.Check(context.Background(), testAttendee, medicalStation, admin, 1)
	assert.ErrorIs(t, err, ErrStationGated)

	err = engine.Uncheck(context.Background(), testAttendee, medicalStation, medic)
	assert.ErrorIs(t, err, ErrStationGated)

	assert.Equal(t, 0, store.Len(), "rejected transitions must not mutate state")
}

func TestEngineSuperAdminBypassesGating(t *testing.T) {
	engine, store := newTestEngine(&fakeWriter{})

	_, err := engine.Check(context.Background(), testAttendee, medicalStation, superAdmin, 1)
	require.NoError(t, err)
	assert.True(t, store.Checked(domain.StatusKey{AttendeeID: 100, StationID: 2}))
}

func TestEngineRoleRestriction(t *testing.T) {
	engine, _ := newTestEngine(&fakeWriter{})

	// Check the main station first so gating passes.
	_, err := engine.Check(context.Background(), testAttendee, mainStation, admin, 1)
	require.NoError(t, err)

	dental := domain.Station{ID: 3, Name: "Dental Check", IsEnabled: true}
	_, err = engine.Check(context.Background(), testAttendee, dental, medic, 1)
	assert.ErrorIs(t, err, ErrRoleRestricted)
}

func TestEngineQuantityBounds(t *testing.T) {
	engine, store := newTestEngine(&fakeWriter{})

	_, err := engine.Check(context.Background(), testAttendee, mainStation, admin, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = engine.Check(context.Background(), testAttendee, mainStation, admin, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// quantity=5 exceeds the attendee's registered 3.
	_, err = engine.Check(context.Background(), testAttendee, mainStation, admin, 5)
	assert.ErrorIs(t, err, ErrQuantityExceeded)
	assert.Equal(t, 0, store.Len())
}

func TestEnginePartialFulfillmentScenario(t *testing.T) {
	// quantity=3 attendee: qty 2 by a normal operator succeeds, qty 5 is
	// rejected, qty 5 by a super admin succeeds.
	engine, store := newTestEngine(&fakeWriter{})
	key := domain.StatusKey{AttendeeID: 100, StationID: 1}

	st, err := engine.Check(context.Background(), testAttendee, mainStation, admin, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Quantity)
	assert.Equal(t, 2, store.Get(key).Quantity)

	_, err = engine.Check(context.Background(), testAttendee, mainStation, admin, 5)
	assert.ErrorIs(t, err, ErrQuantityExceeded)
	assert.Equal(t, 2, store.Get(key).Quantity, "rejected transition must not change state")

	st, err = engine.Check(context.Background(), testAttendee, mainStation, superAdmin, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Quantity)
	assert.Equal(t, 5, store.Get(key).Quantity)
}

func TestEngineRollbackOnWriteFailure(t *testing.T) {
	writer := &fakeWriter{failWrites: 10} // more than attempts, hard failure
	engine, store := newTestEngine(writer)
	key := domain.StatusKey{AttendeeID: 100, StationID: 1}

	_, err := engine.Check(context.Background(), testAttendee, mainStation, admin, 2)
	require.Error(t, err)

	assert.False(t, store.Checked(key), "store must equal its pre-transition state after rollback")
	assert.Equal(t, 4, writer.upserts, "write is retried with backoff before giving up")
}

func TestEngineRollbackRestoresPriorCheckIn(t *testing.T) {
	writer := &fakeWriter{}
	engine, store := newTestEngine(writer)
	key := domain.StatusKey{AttendeeID: 100, StationID: 1}

	_, err := engine.Check(context.Background(), testAttendee, mainStation, admin, 2)
	require.NoError(t, err)
	before := store.Get(key)

	writer.failWrites = 100
	writer.upserts = 0
	_, err = engine.Check(context.Background(), testAttendee, mainStation, admin, 3)
	require.Error(t, err)

	assert.Equal(t, before, store.Get(key))
}

func TestEngineWriteRetriesThenSucceeds(t *testing.T) {
	writer := &fakeWriter{failWrites: 2}
	engine, store := newTestEngine(writer)

	_, err := engine.Check(context.Background(), testAttendee, mainStation, admin, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, writer.upserts)
	assert.True(t, store.Checked(domain.StatusKey{AttendeeID: 100, StationID: 1}))
}

func TestEngineUncheck(t *testing.T) {
	writer := &fakeWriter{}
	engine, store := newTestEngine(writer)
	key := domain.StatusKey{AttendeeID: 100, StationID: 1}

	_, err := engine.Check(context.Background(), testAttendee, mainStation, admin, 2)
	require.NoError(t, err)

	err = engine.Uncheck(context.Background(), testAttendee, mainStation, admin)
	require.NoError(t, err)
	assert.False(t, store.Checked(key))
	assert.Equal(t, 1, writer.clears)
}

func TestEngineUncheckAbsentSlotIsNoop(t *testing.T) {
	writer := &fakeWriter{}
	engine, store := newTestEngine(writer)

	err := engine.Uncheck(context.Background(), testAttendee, mainStation, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, writer.clears, "no write for a slot that was never checked")
	assert.Equal(t, 0, store.Len())
}
