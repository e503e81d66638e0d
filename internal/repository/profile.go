package repository

import (
	"context"
	"fmt"

	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/repository/dao"
)

var (
	ErrProfileEmailExists = dao.ErrProfileEmailExists
	ErrProfileNotFound    = dao.ErrProfileNotFound
)

type ProfileDAO interface {
	Insert(ctx context.Context, profile dao.Profile) (dao.Profile, error)
	FindByID(ctx context.Context, id uint) (dao.Profile, error)
	FindByEmail(ctx context.Context, email string) (dao.Profile, error)
}

type ProfileRepository struct {
	dao ProfileDAO
}

func NewProfileRepository(dao ProfileDAO) *ProfileRepository {
	return &ProfileRepository{
		dao: dao,
	}
}

func (r *ProfileRepository) daoToDomain(p dao.Profile) domain.Profile {
	return domain.Profile{
		ID:        p.ID,
		Email:     p.Email,
		Password:  p.Password,
		Name:      p.Name,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r *ProfileRepository) Create(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	created, err := r.dao.Insert(ctx, dao.Profile{
		Email:    profile.Email,
		Password: profile.Password,
		Name:     profile.Name,
		Role:     profile.Role,
	})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uint) (domain.Profile, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (domain.Profile, error) {
	found, err := r.dao.FindByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("r.dao.FindByEmail -> %w", err)
	}

	return r.daoToDomain(found), nil
}
