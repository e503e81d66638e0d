package service

import (
	"context"
	"fmt"

	"checkpoint-backend/internal/checkin"
	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/repository"
)

var ErrStationNotFound = repository.ErrStationNotFound

type StationRepositoryIface interface {
	Create(ctx context.Context, station domain.Station) (domain.Station, error)
	FindByID(ctx context.Context, id uint) (domain.Station, error)
	ListAll(ctx context.Context) ([]domain.Station, error)
	Update(ctx context.Context, station domain.Station) (domain.Station, error)
	SetMain(ctx context.Context, id uint) error
}

// StationService manages the station catalog. Reads for operators come
// from the live in-memory catalog; admin mutations go to the database,
// and the change feed folds them back into the catalog.
type StationService struct {
	repo    StationRepositoryIface
	catalog *checkin.Catalog
}

func NewStationService(repo StationRepositoryIface, catalog *checkin.Catalog) *StationService {
	return &StationService{
		repo:    repo,
		catalog: catalog,
	}
}

// ListEnabled returns the stations operators see, in display order.
func (s *StationService) ListEnabled(ctx context.Context) []domain.Station {
	return s.catalog.Stations()
}

// ListAll returns every station, disabled ones included, for the admin
// surface.
func (s *StationService) ListAll(ctx context.Context) ([]domain.Station, error) {
	stations, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListAll -> %w", err)
	}

	return stations, nil
}

func (s *StationService) CreateStation(ctx context.Context, station domain.Station) (domain.Station, error) {
	created, err := s.repo.Create(ctx, station)
	if err != nil {
		return domain.Station{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *StationService) UpdateStation(ctx context.Context, station domain.Station) (domain.Station, error) {
	updated, err := s.repo.Update(ctx, station)
	if err != nil {
		return domain.Station{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// SetMain promotes the station to be the single main gate.
func (s *StationService) SetMain(ctx context.Context, id uint) (domain.Station, error) {
	if err := s.repo.SetMain(ctx, id); err != nil {
		return domain.Station{}, fmt.Errorf("s.repo.SetMain -> %w", err)
	}

	station, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Station{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return station, nil
}
