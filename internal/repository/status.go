package repository

import (
	"context"
	"fmt"
	"time"

	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/repository/dao"
)

type StatusDAO interface {
	Upsert(ctx context.Context, status dao.AttendeeStationStatus) error
	Clear(ctx context.Context, attendeeID, stationID uint) error
	LoadChecked(ctx context.Context) ([]dao.AttendeeStationStatus, error)
	CountByStation(ctx context.Context) ([]dao.StationCount, error)
	ResetAll(ctx context.Context) (int64, error)
	ResetStations(ctx context.Context, stationIDs []uint) (int64, error)
}

// StatusRepository is the row store behind the in-memory projection.
// It satisfies both the transition engine's writer and the
// reconciler's loader.
type StatusRepository struct {
	dao      StatusDAO
	stations *StationRepository
}

func NewStatusRepository(dao StatusDAO, stations *StationRepository) *StatusRepository {
	return &StatusRepository{
		dao:      dao,
		stations: stations,
	}
}

func (r *StatusRepository) UpsertStatus(ctx context.Context, key domain.StatusKey, checkedAt time.Time, quantity int) error {
	err := r.dao.Upsert(ctx, dao.AttendeeStationStatus{
		AttendeeID: key.AttendeeID,
		StationID:  key.StationID,
		CheckedAt:  &checkedAt,
		Quantity:   quantity,
	})
	if err != nil {
		return fmt.Errorf("r.dao.Upsert -> %w", err)
	}

	return nil
}

func (r *StatusRepository) ClearStatus(ctx context.Context, key domain.StatusKey) error {
	if err := r.dao.Clear(ctx, key.AttendeeID, key.StationID); err != nil {
		return fmt.Errorf("r.dao.Clear -> %w", err)
	}

	return nil
}

// LoadStatuses returns every checked slot keyed for the projection.
func (r *StatusRepository) LoadStatuses(ctx context.Context) (map[domain.StatusKey]domain.CheckInStatus, error) {
	rows, err := r.dao.LoadChecked(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.LoadChecked -> %w", err)
	}

	statuses := make(map[domain.StatusKey]domain.CheckInStatus, len(rows))
	for _, row := range rows {
		key := domain.StatusKey{AttendeeID: row.AttendeeID, StationID: row.StationID}
		statuses[key] = domain.CheckInStatus{
			CheckedAt: row.CheckedAt,
			Quantity:  row.Quantity,
		}
	}

	return statuses, nil
}

func (r *StatusRepository) LoadStations(ctx context.Context) ([]domain.Station, error) {
	return r.stations.ListAll(ctx)
}

func (r *StatusRepository) CountByStation(ctx context.Context) (map[uint]domain.StationTally, error) {
	counts, err := r.dao.CountByStation(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.CountByStation -> %w", err)
	}

	tallies := make(map[uint]domain.StationTally, len(counts))
	for _, c := range counts {
		tallies[c.StationID] = domain.StationTally{
			Accounts: c.Accounts,
			People:   c.People,
		}
	}

	return tallies, nil
}

func (r *StatusRepository) ResetAll(ctx context.Context) (int64, error) {
	affected, err := r.dao.ResetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ResetAll -> %w", err)
	}

	return affected, nil
}

func (r *StatusRepository) ResetStations(ctx context.Context, stationIDs []uint) (int64, error) {
	affected, err := r.dao.ResetStations(ctx, stationIDs)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ResetStations -> %w", err)
	}

	return affected, nil
}
