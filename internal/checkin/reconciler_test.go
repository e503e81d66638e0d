package checkin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkpoint-backend/internal/domain"
)

type fakeFeed struct {
	events chan domain.ChangeEvent
	states chan ConnState
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		events: make(chan domain.ChangeEvent, 16),
		states: make(chan ConnState, 16),
	}
}

func (f *fakeFeed) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeFeed) Events() <-chan domain.ChangeEvent { return f.events }
func (f *fakeFeed) States() <-chan ConnState          { return f.states }

type fakeLoader struct {
	mu       sync.Mutex
	statuses map[domain.StatusKey]domain.CheckInStatus
	stations []domain.Station
	loads    int
}

func (l *fakeLoader) LoadStatuses(context.Context) (map[domain.StatusKey]domain.CheckInStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.loads++
	out := make(map[domain.StatusKey]domain.CheckInStatus, len(l.statuses))
	for k, v := range l.statuses {
		out[k] = v
	}
	return out, nil
}

func (l *fakeLoader) LoadStations(context.Context) ([]domain.Station, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]domain.Station(nil), l.stations...), nil
}

func (l *fakeLoader) loadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.loads
}

type fakeSink struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	states []ConnState
}

func (s *fakeSink) PublishEvent(e domain.ChangeEvent) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *fakeSink) PublishState(st ConnState) {
	s.mu.Lock()
	s.states = append(s.states, st)
	s.mu.Unlock()
}

func (s *fakeSink) eventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.events)
}

func startReconciler(t *testing.T, feed *fakeFeed, loader *fakeLoader, sink *fakeSink) (*Reconciler, *StatusStore, *Catalog, func()) {
	t.Helper()

	store := NewStatusStore()
	catalog := NewCatalog()
	r := NewReconciler(store, catalog, feed, loader, sink)
	r.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()

	return r, store, catalog, func() {
		cancel()
		<-done
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not reached in time")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestReconcilerAppliesEventsInDeliveryOrder(t *testing.T) {
	feed := newFakeFeed()
	sink := &fakeSink{}
	_, store, _, stop := startReconciler(t, feed, &fakeLoader{}, sink)
	defer stop()

	key := domain.StatusKey{AttendeeID: 1, StationID: 1}

	// Two operators' concurrent transitions on the same key: the
	// later-delivered event decides the final value.
	feed.events <- domain.ChangeEvent{
		Type: domain.EventUpdate, Table: StatusTable,
		AttendeeID: 1, StationID: 1,
		CheckedAt: ts(t, "2025-08-01T10:00:09Z"), Quantity: 2,
	}
	feed.events <- domain.ChangeEvent{
		Type: domain.EventUpdate, Table: StatusTable,
		AttendeeID: 1, StationID: 1,
		CheckedAt: ts(t, "2025-08-01T10:00:03Z"), Quantity: 1,
	}

	waitFor(t, func() bool { return sink.eventCount() == 2 })

	got := store.Get(key)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, ts(t, "2025-08-01T10:00:03Z"), got.CheckedAt)
}

func TestReconcilerOverridesOptimisticGuess(t *testing.T) {
	feed := newFakeFeed()
	sink := &fakeSink{}
	_, store, _, stop := startReconciler(t, feed, &fakeLoader{}, sink)
	defer stop()

	key := domain.StatusKey{AttendeeID: 2, StationID: 1}
	store.ApplyOptimistic(key, domain.CheckInStatus{CheckedAt: ts(t, "2025-08-01T10:00:00Z"), Quantity: 3})

	feed.events <- domain.ChangeEvent{
		Type: domain.EventUpdate, Table: StatusTable,
		AttendeeID: 2, StationID: 1,
		CheckedAt: ts(t, "2025-08-01T10:00:01Z"), Quantity: 1,
	}

	waitFor(t, func() bool { return store.Get(key).Quantity == 1 })
}

func TestReconcilerSubscribedTriggersFullLoad(t *testing.T) {
	feed := newFakeFeed()
	loader := &fakeLoader{
		statuses: map[domain.StatusKey]domain.CheckInStatus{
			{AttendeeID: 9, StationID: 1}: {CheckedAt: ts(t, "2025-08-01T08:00:00Z"), Quantity: 2},
		},
		stations: []domain.Station{
			{ID: 1, Name: "Shabebik Desk", IsEnabled: true, IsMain: true, SortOrder: 1},
			{ID: 2, Name: "Disabled", IsEnabled: false, SortOrder: 2},
		},
	}
	r, store, catalog, stop := startReconciler(t, feed, loader, &fakeSink{})
	defer stop()

	feed.states <- StateSubscribed

	waitFor(t, func() bool { return store.Len() == 1 })
	assert.Equal(t, StateSubscribed, r.State())

	stations := catalog.Stations()
	require.Len(t, stations, 1, "disabled stations are dropped from the catalog")
	main, ok := catalog.Main()
	require.True(t, ok)
	assert.Equal(t, uint(1), main.ID)
}

func TestReconcilerStationEventReloadsCatalog(t *testing.T) {
	feed := newFakeFeed()
	loader := &fakeLoader{
		stations: []domain.Station{{ID: 5, Name: "Dental Check", IsEnabled: true, SortOrder: 1}},
	}
	_, _, catalog, stop := startReconciler(t, feed, loader, &fakeSink{})
	defer stop()

	feed.events <- domain.ChangeEvent{Type: domain.EventUpdate, Table: StationTable, StationID: 5}

	waitFor(t, func() bool { return len(catalog.Stations()) == 1 })
}

func TestReconcilerDegradedModePollsAndAllowsManualRefresh(t *testing.T) {
	feed := newFakeFeed()
	loader := &fakeLoader{
		statuses: map[domain.StatusKey]domain.CheckInStatus{
			{AttendeeID: 1, StationID: 1}: {CheckedAt: ts(t, "2025-08-01T08:00:00Z"), Quantity: 1},
		},
	}
	r, store, _, stop := startReconciler(t, feed, loader, &fakeSink{})
	defer stop()

	feed.states <- StateChannelError

	waitFor(t, func() bool { return r.State() == StateChannelError })
	assert.True(t, r.State().Degraded())

	// Fallback polling kicks in without the subscription recovering.
	waitFor(t, func() bool { return loader.loadCount() >= 1 })
	waitFor(t, func() bool { return store.Len() == 1 })

	// A manual refresh during the window also returns current data.
	before := loader.loadCount()
	require.NoError(t, r.Refresh(context.Background()))
	assert.Greater(t, loader.loadCount(), before)
}

func TestReconcilerDuplicateDeliveryIdempotent(t *testing.T) {
	feed := newFakeFeed()
	sink := &fakeSink{}
	_, store, _, stop := startReconciler(t, feed, &fakeLoader{}, sink)
	defer stop()

	event := domain.ChangeEvent{
		Type: domain.EventInsert, Table: StatusTable,
		AttendeeID: 4, StationID: 2,
		CheckedAt: ts(t, "2025-08-01T10:00:00Z"), Quantity: 2,
	}
	feed.events <- event
	feed.events <- event

	waitFor(t, func() bool { return sink.eventCount() == 2 })
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 2, store.Get(event.Key()).Quantity)
}
