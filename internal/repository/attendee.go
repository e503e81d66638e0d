package repository

import (
	"context"
	"fmt"

	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/repository/dao"
)

var ErrAttendeeNotFound = dao.ErrAttendeeNotFound

type AttendeeDAO interface {
	Insert(ctx context.Context, attendee dao.Attendee) (dao.Attendee, error)
	FindByID(ctx context.Context, id uint) (dao.Attendee, error)
	FindByIDs(ctx context.Context, ids []uint) ([]dao.Attendee, error)
	List(ctx context.Context, filter dao.ListFilter) ([]dao.Attendee, int64, error)
	CountAll(ctx context.Context) (int64, error)
	SumQuantity(ctx context.Context) (int64, error)
	DistinctLocations(ctx context.Context, column string) ([]string, error)
}

type AttendeeRepository struct {
	dao AttendeeDAO
}

func NewAttendeeRepository(dao AttendeeDAO) *AttendeeRepository {
	return &AttendeeRepository{
		dao: dao,
	}
}

func (r *AttendeeRepository) domainToDao(a domain.Attendee) dao.Attendee {
	return dao.Attendee{
		ID:           a.ID,
		Name:         a.Name,
		RecordNumber: a.RecordNumber,
		Governorate:  a.Governorate,
		District:     a.District,
		Area:         a.Area,
		Phone:        a.Phone,
		Quantity:     a.Quantity,
		Ages:         a.Ages,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (r *AttendeeRepository) daoToDomain(a dao.Attendee) domain.Attendee {
	return domain.Attendee{
		ID:           a.ID,
		Name:         a.Name,
		RecordNumber: a.RecordNumber,
		Governorate:  a.Governorate,
		District:     a.District,
		Area:         a.Area,
		Phone:        a.Phone,
		Quantity:     a.Quantity,
		Ages:         a.Ages,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (r *AttendeeRepository) daosToDomain(attendees []dao.Attendee) []domain.Attendee {
	out := make([]domain.Attendee, len(attendees))
	for i, a := range attendees {
		out[i] = r.daoToDomain(a)
	}
	return out
}

func (r *AttendeeRepository) Create(ctx context.Context, attendee domain.Attendee) (domain.Attendee, error) {
	if attendee.Quantity < 1 {
		attendee.Quantity = 1
	}

	created, err := r.dao.Insert(ctx, r.domainToDao(attendee))
	if err != nil {
		return domain.Attendee{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *AttendeeRepository) FindByID(ctx context.Context, id uint) (domain.Attendee, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Attendee{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *AttendeeRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Attendee, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	return r.daosToDomain(found), nil
}

// List returns one roster page plus the total matching count.
func (r *AttendeeRepository) List(ctx context.Context, filter domain.AttendeeFilter) ([]domain.Attendee, int64, error) {
	attendees, total, err := r.dao.List(ctx, dao.ListFilter{
		Patterns:    filter.Patterns,
		Governorate: filter.Governorate,
		District:    filter.District,
		Area:        filter.Area,
		SortKey:     filter.SortKey,
		SortDesc:    filter.SortDesc,
		Offset:      filter.Offset,
		Limit:       filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.List -> %w", err)
	}

	return r.daosToDomain(attendees), total, nil
}

func (r *AttendeeRepository) CountAll(ctx context.Context) (int64, error) {
	total, err := r.dao.CountAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountAll -> %w", err)
	}

	return total, nil
}

func (r *AttendeeRepository) SumQuantity(ctx context.Context) (int64, error) {
	sum, err := r.dao.SumQuantity(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumQuantity -> %w", err)
	}

	return sum, nil
}

func (r *AttendeeRepository) DistinctLocations(ctx context.Context, column string) ([]string, error) {
	values, err := r.dao.DistinctLocations(ctx, column)
	if err != nil {
		return nil, fmt.Errorf("r.dao.DistinctLocations -> %w", err)
	}

	return values, nil
}
