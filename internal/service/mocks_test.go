package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/repository"

	"github.com/stretchr/testify/mock"
)

// memStore backs the workspace, reservation and user fakes with shared
// in-memory tables. It does not serialize anything on its own, so any
// double-booking protection observed in tests comes from the service.
type memStore struct {
	mu           sync.Mutex
	workspaces   map[string]*domain.Workspace
	reservations map[string]*domain.Reservation
	users        map[string]*domain.User

	// failWith, when set, is returned by every repository call.
	failWith error
	// readDelay widens the window between the availability read and the write.
	readDelay time.Duration
	txCount   int
}

func newMemStore() *memStore {
	return &memStore{
		workspaces:   make(map[string]*domain.Workspace),
		reservations: make(map[string]*domain.Reservation),
		users:        make(map[string]*domain.User),
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.txCount++
	m.mu.Unlock()
	return fn(ctx)
}

func (m *memStore) addWorkspace(id, wsType string, active bool) *domain.Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := &domain.Workspace{ID: id, Type: wsType, Active: active, CreatedAt: time.Now()}
	m.workspaces[id] = ws
	return ws
}

func (m *memStore) activeReservations(pred func(r *domain.Reservation) bool) []*domain.Reservation {
	out := []*domain.Reservation{}
	for _, r := range m.reservations {
		if r.Active && pred(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDateTime.Before(out[j].StartDateTime) })
	return out
}

type memWorkspaceRepo struct{ *memStore }

func (r memWorkspaceRepo) Create(_ context.Context, ws *domain.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	ws.CreatedAt = time.Now()
	cp := *ws
	r.workspaces[ws.ID] = &cp
	return nil
}

func (r memWorkspaceRepo) GetByID(_ context.Context, id string) (*domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	ws, ok := r.workspaces[id]
	if !ok {
		return nil, repository.ErrWorkspaceNotFound
	}
	cp := *ws
	return &cp, nil
}

func (r memWorkspaceRepo) ListActive(_ context.Context) ([]*domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := []*domain.Workspace{}
	for _, ws := range r.workspaces {
		if ws.Active {
			cp := *ws
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memWorkspaceRepo) GetWithActiveReservations(_ context.Context, id string) (*domain.Workspace, error) {
	r.mu.Lock()
	if r.failWith != nil {
		r.mu.Unlock()
		return nil, r.failWith
	}
	ws, ok := r.workspaces[id]
	if !ok || !ws.Active {
		r.mu.Unlock()
		return nil, repository.ErrWorkspaceNotFound
	}
	cp := *ws
	cp.Reservations = r.activeReservations(func(res *domain.Reservation) bool { return res.WorkspaceID == id })
	delay := r.readDelay
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return &cp, nil
}

func (r memWorkspaceRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	ws, ok := r.workspaces[id]
	if !ok || !ws.Active {
		return repository.ErrWorkspaceNotFound
	}
	ws.Active = false
	for _, res := range r.reservations {
		if res.WorkspaceID == id {
			res.Active = false
		}
	}
	return nil
}

type memReservationRepo struct{ *memStore }

func (r memReservationRepo) Create(_ context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	res.CreatedAt = time.Now()
	cp := *res
	r.reservations[res.ID] = &cp
	return nil
}

func (r memReservationRepo) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	res, ok := r.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (r memReservationRepo) ListActive(context.Context) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.activeReservations(func(*domain.Reservation) bool { return true }), nil
}

func (r memReservationRepo) ListAll(context.Context) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := []*domain.Reservation{}
	for _, res := range r.reservations {
		cp := *res
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDateTime.Before(out[j].StartDateTime) })
	return out, nil
}

func (r memReservationRepo) ListActiveByWorkspace(_ context.Context, workspaceID string) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.activeReservations(func(res *domain.Reservation) bool { return res.WorkspaceID == workspaceID }), nil
}

func (r memReservationRepo) ListActiveByCustomerName(_ context.Context, name string) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.activeReservations(func(res *domain.Reservation) bool { return res.CustomerName == name }), nil
}

func (r memReservationRepo) ListActiveByUser(_ context.Context, userID string) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	return r.activeReservations(func(res *domain.Reservation) bool { return res.UserID == userID }), nil
}

func (r memReservationRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	res, ok := r.reservations[id]
	if !ok || !res.Active {
		return repository.ErrReservationNotFound
	}
	res.Active = false
	return nil
}

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r memUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r memUserRepo) List(context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := []*domain.User{}
	for _, u := range r.users {
		if u.Active {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r memUserRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	u, ok := r.users[id]
	if !ok || !u.Active {
		return repository.ErrUserNotFound
	}
	u.Active = false
	return nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyReservationConfirmed(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockNotifier) NotifyWorkspaceCreated(ctx context.Context, ws *domain.Workspace) error {
	args := m.Called(ctx, ws)
	return args.Error(0)
}

type panickingNotifier struct{}

func (panickingNotifier) NotifyReservationConfirmed(context.Context, *domain.Reservation) error {
	panic("mail relay exploded")
}

func (panickingNotifier) NotifyWorkspaceCreated(context.Context, *domain.Workspace) error {
	return nil
}

// plainHasher avoids bcrypt cost in service tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	return "hashed:" + password, nil
}

func (plainHasher) Compare(hashed, password string) error {
	if hashed != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}
