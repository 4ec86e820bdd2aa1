package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/repository"
)

// memBackend is a small in-memory stand-in for the Postgres repositories.
type memBackend struct {
	mu           sync.Mutex
	workspaces   map[string]*domain.Workspace
	reservations map[string]*domain.Reservation
	users        map[string]*domain.User
	fail         error
}

func newMemBackend() *memBackend {
	return &memBackend{
		workspaces:   map[string]*domain.Workspace{},
		reservations: map[string]*domain.Reservation{},
		users:        map[string]*domain.User{},
	}
}

func (m *memBackend) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memBackend) filter(pred func(*domain.Reservation) bool) []*domain.Reservation {
	out := []*domain.Reservation{}
	for _, r := range m.reservations {
		if pred(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDateTime.Before(out[j].StartDateTime) })
	return out
}

type workspaceRepo struct{ *memBackend }

func (r workspaceRepo) Create(_ context.Context, ws *domain.Workspace) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	ws.CreatedAt = time.Now()
	cp := *ws
	r.workspaces[ws.ID] = &cp
	return nil
}

func (r workspaceRepo) GetByID(_ context.Context, id string) (*domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	ws, ok := r.workspaces[id]
	if !ok {
		return nil, repository.ErrWorkspaceNotFound
	}
	cp := *ws
	return &cp, nil
}

func (r workspaceRepo) ListActive(context.Context) ([]*domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
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

func (r workspaceRepo) GetWithActiveReservations(_ context.Context, id string) (*domain.Workspace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	ws, ok := r.workspaces[id]
	if !ok || !ws.Active {
		return nil, repository.ErrWorkspaceNotFound
	}
	cp := *ws
	cp.Reservations = r.filter(func(res *domain.Reservation) bool { return res.Active && res.WorkspaceID == id })
	return &cp, nil
}

func (r workspaceRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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

type reservationRepo struct{ *memBackend }

func (r reservationRepo) Create(_ context.Context, res *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	res.CreatedAt = time.Now()
	cp := *res
	r.reservations[res.ID] = &cp
	return nil
}

func (r reservationRepo) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	res, ok := r.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *res
	return &cp, nil
}

func (r reservationRepo) ListActive(context.Context) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return r.filter(func(res *domain.Reservation) bool { return res.Active }), nil
}

func (r reservationRepo) ListAll(context.Context) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	return r.filter(func(*domain.Reservation) bool { return true }), nil
}

func (r reservationRepo) ListActiveByWorkspace(_ context.Context, id string) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(res *domain.Reservation) bool { return res.Active && res.WorkspaceID == id }), nil
}

func (r reservationRepo) ListActiveByCustomerName(_ context.Context, name string) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(res *domain.Reservation) bool { return res.Active && res.CustomerName == name }), nil
}

func (r reservationRepo) ListActiveByUser(_ context.Context, userID string) ([]*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(res *domain.Reservation) bool { return res.Active && res.UserID == userID }), nil
}

func (r reservationRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[id]
	if !ok || !res.Active {
		return repository.ErrReservationNotFound
	}
	res.Active = false
	return nil
}

type userRepo struct{ *memBackend }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r userRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r userRepo) List(context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.User{}
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r userRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.Active {
		return repository.ErrUserNotFound
	}
	u.Active = false
	return nil
}

type notificationRepo struct {
	mu    sync.Mutex
	saved []*domain.Notification
}

func (r *notificationRepo) Save(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, n)
	return nil
}

func (r *notificationRepo) ListByUser(_ context.Context, userID string) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Notification{}
	for _, n := range r.saved {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}
