package repository

import (
	"context"
	"fmt"

	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/repository/dao"
)

var ErrStationNotFound = dao.ErrStationNotFound

type StationDAO interface {
	Insert(ctx context.Context, station dao.Station) (dao.Station, error)
	FindByID(ctx context.Context, id uint) (dao.Station, error)
	ListAll(ctx context.Context) ([]dao.Station, error)
	Update(ctx context.Context, station dao.Station) (dao.Station, error)
	SetMain(ctx context.Context, id uint) error
}

type StationRepository struct {
	dao StationDAO
}

func NewStationRepository(dao StationDAO) *StationRepository {
	return &StationRepository{
		dao: dao,
	}
}

func (r *StationRepository) domainToDao(s domain.Station) dao.Station {
	return dao.Station{
		ID:        s.ID,
		Name:      s.Name,
		IsEnabled: s.IsEnabled,
		IsMain:    s.IsMain,
		SortOrder: s.SortOrder,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (r *StationRepository) daoToDomain(s dao.Station) domain.Station {
	return domain.Station{
		ID:        s.ID,
		Name:      s.Name,
		IsEnabled: s.IsEnabled,
		IsMain:    s.IsMain,
		SortOrder: s.SortOrder,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (r *StationRepository) Create(ctx context.Context, station domain.Station) (domain.Station, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(station))
	if err != nil {
		return domain.Station{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *StationRepository) FindByID(ctx context.Context, id uint) (domain.Station, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Station{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *StationRepository) ListAll(ctx context.Context) ([]domain.Station, error) {
	found, err := r.dao.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListAll -> %w", err)
	}

	stations := make([]domain.Station, len(found))
	for i, s := range found {
		stations[i] = r.daoToDomain(s)
	}

	return stations, nil
}

func (r *StationRepository) Update(ctx context.Context, station domain.Station) (domain.Station, error) {
	updated, err := r.dao.Update(ctx, r.domainToDao(station))
	if err != nil {
		return domain.Station{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *StationRepository) SetMain(ctx context.Context, id uint) error {
	if err := r.dao.SetMain(ctx, id); err != nil {
		return fmt.Errorf("r.dao.SetMain -> %w", err)
	}

	return nil
}
