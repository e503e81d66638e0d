package checkin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"checkpoint-backend/internal/domain"
)

// StatusTable and StationTable name the relations the feed watches.
const (
	StatusTable  = "attendee_station_status"
	StationTable = "stations"
)

// Loader performs the full reconciling loads used on subscribe and
// during degraded-mode polling.
type Loader interface {
	LoadStatuses(ctx context.Context) (map[domain.StatusKey]domain.CheckInStatus, error)
	LoadStations(ctx context.Context) ([]domain.Station, error)
}

// EventSink receives applied events and state transitions for fanout
// to connected operators. Implementations must not block.
type EventSink interface {
	PublishEvent(e domain.ChangeEvent)
	PublishState(s ConnState)
}

// Reconciler consumes the change feed and folds every observed change
// into the status store and station catalog. The feed is authoritative:
// events overwrite optimistic local guesses, last writer wins per key.
//
// While the feed is degraded it falls back to polling full reloads, so
// operators keep a current (if slightly stale) picture, and no check-in
// operation is ever blocked by subscription state.
type Reconciler struct {
	store   *StatusStore
	catalog *Catalog
	feed    ChangeFeed
	loader  Loader
	sink    EventSink

	pollInterval time.Duration

	mu    sync.RWMutex
	state ConnState
}

func NewReconciler(store *StatusStore, catalog *Catalog, feed ChangeFeed, loader Loader, sink EventSink) *Reconciler {
	return &Reconciler{
		store:        store,
		catalog:      catalog,
		feed:         feed,
		loader:       loader,
		sink:         sink,
		pollInterval: 15 * time.Second,
		state:        StateConnecting,
	}
}

// State returns the current feed connection state, for the
// degraded-mode indicator.
func (r *Reconciler) State() ConnState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state
}

// Run drives the reconcile loop until ctx is done. The feed reconnects
// internally; this loop applies its events in delivery order and arms
// fallback polling whenever the subscription is down.
func (r *Reconciler) Run(ctx context.Context) error {
	go func() {
		if err := r.feed.Run(ctx); err != nil && ctx.Err() == nil {
			zap.L().Error("change feed stopped", zap.Error(err))
		}
	}()

	poll := time.NewTicker(r.pollInterval)
	defer poll.Stop()

	for {
		select {
		case e, ok := <-r.feed.Events():
			if !ok {
				return nil
			}
			r.apply(ctx, e)

		case s, ok := <-r.feed.States():
			if !ok {
				return nil
			}
			r.transition(ctx, s)

		case <-poll.C:
			if r.State().Degraded() {
				if err := r.Refresh(ctx); err != nil {
					zap.L().Warn("fallback poll failed", zap.Error(err))
				}
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Refresh performs a full reconciling load of statuses and stations.
// Safe to call at any time, including manually while degraded.
func (r *Reconciler) Refresh(ctx context.Context) error {
	statuses, err := r.loader.LoadStatuses(ctx)
	if err != nil {
		return fmt.Errorf("r.loader.LoadStatuses -> %w", err)
	}
	stations, err := r.loader.LoadStations(ctx)
	if err != nil {
		return fmt.Errorf("r.loader.LoadStations -> %w", err)
	}

	r.store.ReplaceAll(statuses)
	r.catalog.Replace(stations)

	return nil
}

func (r *Reconciler) apply(ctx context.Context, e domain.ChangeEvent) {
	switch e.Table {
	case StationTable:
		// Station rows are small; any change reloads the catalog.
		stations, err := r.loader.LoadStations(ctx)
		if err != nil {
			zap.L().Warn("station reload failed", zap.Error(err))
		} else {
			r.catalog.Replace(stations)
		}
	default:
		r.store.ApplyEvent(e)
	}

	if r.sink != nil {
		r.sink.PublishEvent(e)
	}
}

func (r *Reconciler) transition(ctx context.Context, s ConnState) {
	r.mu.Lock()
	prev := r.state
	r.state = s
	r.mu.Unlock()

	if prev != s {
		zap.L().Info("change feed state",
			zap.String("from", string(prev)),
			zap.String("to", string(s)))
	}

	// Catch up on anything missed while (re)connecting.
	if s == StateSubscribed {
		if err := r.Refresh(ctx); err != nil {
			zap.L().Warn("reconciling load failed", zap.Error(err))
		}
	}

	if r.sink != nil {
		r.sink.PublishState(s)
	}
}
