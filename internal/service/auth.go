package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"checkpoint-backend/internal/domain"
	"checkpoint-backend/internal/repository"
)

var (
	ErrProfileNotFound = repository.ErrProfileNotFound
	ErrWrongPassword   = errors.New("wrong password")
)

type AuthProfileRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.Profile, error)
	FindByID(ctx context.Context, id uint) (domain.Profile, error)
}

// AuthService authenticates operator accounts. Accounts are
// provisioned out of band; there is no self-service signup.
type AuthService struct {
	repo AuthProfileRepository
}

func NewAuthService(repo AuthProfileRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Profile, error) {
	profile, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}

		return domain.Profile{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(password)); err != nil {
		return domain.Profile{}, ErrWrongPassword
	}

	return profile, nil
}

// GetProfile resolves the acting operator from a verified token's
// subject.
func (s *AuthService) GetProfile(ctx context.Context, id uint) (domain.Profile, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}

		return domain.Profile{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return profile, nil
}
