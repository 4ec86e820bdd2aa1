package service

import (
	"context"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/repository"

	"github.com/rs/zerolog"
)

type UserService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, missing("user_id")
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	user.Password = ""
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.Password = ""
	}
	return users, nil
}

// Deactivate soft-deletes a user; their reservations are left untouched.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	if id == "" {
		return missing("user_id")
	}
	if err := s.userRepo.Deactivate(ctx, id); err != nil {
		return translateRepoError(err)
	}
	s.logger.Info().Str("user_id", id).Msg("user deactivated")
	return nil
}
