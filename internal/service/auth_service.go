package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/repository"
	"coworking-reservation-server/pkg/jwt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AuthService struct {
	userRepo          repository.UserRepository
	hasher            PasswordHasher
	jwtSecret         string
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
	logger            zerolog.Logger
}

func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, jwtSecret string, jwtExp, refreshExp time.Duration, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		hasher:            hasher,
		jwtSecret:         jwtSecret,
		jwtExpiration:     jwtExp,
		refreshExpiration: refreshExp,
		logger:            logger.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	return s.createUser(ctx, req, domain.RoleCustomer)
}

// CreateAdmin creates an administrator account. It is only reachable from the CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	return s.createUser(ctx, req, domain.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, req *domain.RegisterRequest, role domain.Role) (*domain.User, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	switch {
	case firstName == "":
		return nil, missing("first_name")
	case lastName == "":
		return nil, missing("last_name")
	case email == "":
		return nil, missing("email")
	case req.Password == "":
		return nil, missing("password")
	}

	emailExists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if emailExists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPassword, err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  hashedPassword,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user created")

	user.Password = ""
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrStorage) {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := jwt.GenerateToken(user.ID, string(user.Role), s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(user.ID, string(user.Role), s.refreshExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	user.Password = ""

	return &domain.LoginResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtExpiration.Seconds()),
	}, nil
}

func (s *AuthService) RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.TokenResponse, error) {
	claims, err := jwt.ValidateRefreshToken(req.RefreshToken, s.jwtSecret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrStorage) {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := jwt.GenerateToken(user.ID, string(user.Role), s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtExpiration.Seconds()),
	}, nil
}
