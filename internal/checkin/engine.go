package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/retry"
	"checkpoint-backend/internal/roles"
)

var (
	ErrStationGated     = errors.New("station gated until main station is checked")
	ErrRoleRestricted   = errors.New("role may not modify this station")
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrQuantityExceeded = errors.New("quantity exceeds the attendee's registered quantity")
)

// StatusWriter is the row store's write surface for check-in rows.
type StatusWriter interface {
	UpsertStatus(ctx context.Context, key domain.StatusKey, checkedAt time.Time, quantity int) error
	ClearStatus(ctx context.Context, key domain.StatusKey) error
}

// Engine validates and executes check/uncheck transitions.
//
// Writes follow the optimistic protocol: the new state lands in the
// local store first, then the row store write runs under bounded
// retry. On hard failure the local slot is rolled back to its
// pre-transition snapshot; on success the authoritative confirmation
// arrives later through the reconciler.
type Engine struct {
	store   *StatusStore
	catalog *Catalog
	writer  StatusWriter
	policy  retry.Policy
	now     func() time.Time
}

func NewEngine(store *StatusStore, catalog *Catalog, writer StatusWriter) *Engine {
	return &Engine{
		store:   store,
		catalog: catalog,
		writer:  writer,
		policy:  retry.DefaultPolicy(),
		now:     time.Now,
	}
}

// Check records passage for the attendee at the station with the
// requested quantity.
func (e *Engine) Check(ctx context.Context, attendee domain.Attendee, station domain.Station, actor domain.Profile, quantity int) (domain.CheckInStatus, error) {
	if err := e.authorize(attendee, station, actor); err != nil {
		return domain.CheckInStatus{}, err
	}

	if quantity < 1 {
		return domain.CheckInStatus{}, ErrInvalidQuantity
	}
	if actor.Role != roles.SuperAdmin && quantity > attendee.Quantity {
		return domain.CheckInStatus{}, ErrQuantityExceeded
	}

	checkedAt := e.now().UTC()
	target := domain.CheckInStatus{CheckedAt: &checkedAt, Quantity: quantity}
	key := domain.StatusKey{AttendeeID: attendee.ID, StationID: station.ID}

	prev := e.store.ApplyOptimistic(key, target)

	err := retry.Do(ctx, e.policy, func(ctx context.Context) error {
		return e.writer.UpsertStatus(ctx, key, checkedAt, quantity)
	})
	if err != nil {
		e.store.Rollback(key, prev)
		zap.L().Warn("check-in write failed, rolled back",
			zap.Uint("attendee_id", key.AttendeeID),
			zap.Uint("station_id", key.StationID),
			zap.Error(err))

		return domain.CheckInStatus{}, fmt.Errorf("e.writer.UpsertStatus -> %w", err)
	}

	return target, nil
}

// Uncheck clears passage for the attendee at the station. Unchecking a
// slot with no prior row is a no-op that leaves the key absent.
func (e *Engine) Uncheck(ctx context.Context, attendee domain.Attendee, station domain.Station, actor domain.Profile) error {
	if err := e.authorize(attendee, station, actor); err != nil {
		return err
	}

	key := domain.StatusKey{AttendeeID: attendee.ID, StationID: station.ID}
	if !e.store.Checked(key) {
		return nil
	}

	prev := e.store.ApplyOptimistic(key, domain.Unchecked())

	err := retry.Do(ctx, e.policy, func(ctx context.Context) error {
		return e.writer.ClearStatus(ctx, key)
	})
	if err != nil {
		e.store.Rollback(key, prev)
		zap.L().Warn("uncheck write failed, rolled back",
			zap.Uint("attendee_id", key.AttendeeID),
			zap.Uint("station_id", key.StationID),
			zap.Error(err))

		return fmt.Errorf("e.writer.ClearStatus -> %w", err)
	}

	return nil
}

// authorize applies the permission rules in order: gating first, then
// the role-to-station mapping. Super admins bypass gating; admins and
// super admins bypass the role mapping.
func (e *Engine) authorize(attendee domain.Attendee, station domain.Station, actor domain.Profile) error {
	if actor.Role != roles.SuperAdmin && !station.IsMain {
		if main, ok := e.catalog.Main(); ok {
			mainKey := domain.StatusKey{AttendeeID: attendee.ID, StationID: main.ID}
			if !e.store.Checked(mainKey) {
				return ErrStationGated
			}
		}
	}

	if !roles.CanModify(actor.Role, station.Name) {
		return ErrRoleRestricted
	}

	return nil
}
