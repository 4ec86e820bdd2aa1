package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	notifier      Notifier
	locks         *WorkspaceLocks
	logger        zerolog.Logger
}

func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, notifier Notifier, locks *WorkspaceLocks, logger zerolog.Logger) *WorkspaceService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if locks == nil {
		locks = NewWorkspaceLocks()
	}
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		notifier:      notifier,
		locks:         locks,
		logger:        logger.With().Str("component", "workspace_service").Logger(),
	}
}

// Create adds a new active workspace.
func (s *WorkspaceService) Create(ctx context.Context, req *domain.CreateWorkspaceRequest) (*domain.Workspace, error) {
	wsType := strings.TrimSpace(req.Type)
	switch {
	case wsType == "":
		return nil, missing("type")
	case utf8.RuneCountInString(wsType) > domain.MaxWorkspaceTypeLength:
		return nil, fmt.Errorf("%w: type must be at most %d characters", ErrInvalidWorkspace, domain.MaxWorkspaceTypeLength)
	case req.Price == nil:
		return nil, missing("price")
	}

	// Prices are stored with cent precision; a sub-cent amount rounds to zero.
	price := req.Price.Round(2)
	if !price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be at least 0.01", ErrInvalidWorkspace)
	}

	ws := &domain.Workspace{
		ID:     uuid.New().String(),
		Type:   wsType,
		Price:  price,
		Active: true,
	}

	if err := s.workspaceRepo.Create(ctx, ws); err != nil {
		return nil, translateRepoError(err)
	}

	s.logger.Info().Str("workspace_id", ws.ID).Str("type", ws.Type).Str("price", ws.Price.StringFixed(2)).Msg("workspace created")
	if err := s.notifier.NotifyWorkspaceCreated(ctx, ws); err != nil {
		s.logger.Warn().Err(err).Str("workspace_id", ws.ID).Msg("failed to send workspace confirmation")
	}
	return ws, nil
}

// List returns the active workspaces.
func (s *WorkspaceService) List(ctx context.Context) ([]*domain.Workspace, error) {
	return s.workspaceRepo.ListActive(ctx)
}

// Get returns a workspace by id, including deactivated ones.
func (s *WorkspaceService) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	if strings.TrimSpace(id) == "" {
		return nil, missing("workspace_id")
	}
	ws, err := s.workspaceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return ws, nil
}

// Deactivate soft-deletes a workspace together with its reservations. It
// holds the same lock as reservation creation for that workspace.
func (s *WorkspaceService) Deactivate(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return missing("workspace_id")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.workspaceRepo.Deactivate(ctx, id); err != nil {
		return translateRepoError(err)
	}

	s.logger.Info().Str("workspace_id", id).Msg("workspace deactivated")
	return nil
}
