package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/websocket"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name string
	err  error

	mu        sync.Mutex
	delivered []*domain.Notification
	block     chan struct{}
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, n *domain.Notification) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, n)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

type panicSink struct{}

func (panicSink) Name() string { return "panic" }
func (panicSink) Deliver(context.Context, *domain.Notification) error {
	panic("boom")
}

type staticUsers map[string]*domain.User

func (u staticUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func testReservation() *domain.Reservation {
	return &domain.Reservation{
		ID:            "r1",
		WorkspaceID:   "w1",
		UserID:        "u1",
		CustomerName:  "Alice",
		StartDateTime: time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC),
		EndDateTime:   time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC),
		Active:        true,
	}
}

func TestDispatcher_FansOutToAllSinks(t *testing.T) {
	failing := &recordingSink{name: "failing", err: errors.New("smtp down")}
	ok := &recordingSink{name: "ok"}

	users := staticUsers{"u1": {ID: "u1", Email: "alice@example.com"}}
	d := NewDispatcher(Options{QueueSize: 4}, users, zerolog.New(io.Discard), failing, panicSink{}, ok)
	d.Start()

	require.NoError(t, d.NotifyReservationConfirmed(context.Background(), testReservation()))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 1, failing.count())
	require.Equal(t, 1, ok.count(), "a failing or panicking sink does not stop the others")

	n := ok.delivered[0]
	assert.Equal(t, domain.NotificationReservationConfirmed, n.Kind)
	assert.Equal(t, "Alice", n.Recipient, "the customer name survives the email lookup")
	assert.Equal(t, "alice@example.com", n.RecipientEmail)
	assert.Equal(t, "r1", n.ReservationID)
	require.NotNil(t, n.StartDateTime)
	assert.Contains(t, n.Message, "2025-04-10T10:00:00Z")
}

func TestDispatcher_RecipientFallsBackToCustomerName(t *testing.T) {
	sink := &recordingSink{name: "ok"}
	d := NewDispatcher(Options{}, staticUsers{}, zerolog.New(io.Discard), sink)
	d.Start()

	require.NoError(t, d.NotifyReservationConfirmed(context.Background(), testReservation()))
	require.NoError(t, d.Close(context.Background()))

	require.Equal(t, 1, sink.count())
	assert.Equal(t, "Alice", sink.delivered[0].Recipient)
	assert.Empty(t, sink.delivered[0].RecipientEmail)
}

func TestDispatcher_NonBlockingWhenQueueFull(t *testing.T) {
	sink := &recordingSink{name: "slow", block: make(chan struct{})}
	d := NewDispatcher(Options{QueueSize: 1}, nil, zerolog.New(io.Discard), sink)
	d.Start()

	// The worker takes the first one and blocks in the sink, the second
	// fills the queue, the third is refused.
	require.NoError(t, d.NotifyReservationConfirmed(context.Background(), testReservation()))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, d.NotifyReservationConfirmed(context.Background(), testReservation()))

	done := make(chan error, 1)
	go func() { done <- d.NotifyReservationConfirmed(context.Background(), testReservation()) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}

	close(sink.block)
	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, 2, sink.count())
}

func TestDispatcher_ClosedRejects(t *testing.T) {
	d := NewDispatcher(Options{}, nil, zerolog.New(io.Discard))
	d.Start()
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	err := d.NotifyWorkspaceCreated(context.Background(), &domain.Workspace{ID: "w1", Type: "Office", Price: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestDispatcher_CloseHonoursContext(t *testing.T) {
	sink := &recordingSink{name: "stuck", block: make(chan struct{})}
	d := NewDispatcher(Options{}, nil, zerolog.New(io.Discard), sink)
	d.Start()
	require.NoError(t, d.NotifyReservationConfirmed(context.Background(), testReservation()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
	close(sink.block)
}

func TestWebSocketSink(t *testing.T) {
	manager := websocket.NewManager(websocket.Options{MaxConnPerUser: 2, WriteWait: time.Second, PongWait: time.Minute, PingPeriod: time.Minute}, zerolog.New(io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	client := websocket.NewClient("c1", "u1", nil, manager)
	manager.Register <- client
	require.Eventually(t, func() bool { return manager.GetUserConnections("u1") == 1 }, time.Second, time.Millisecond)

	sink := NewWebSocketSink(manager)
	start := time.Date(2025, 4, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, sink.Deliver(context.Background(), &domain.Notification{
		Kind:           domain.NotificationReservationConfirmed,
		UserID:         "u1",
		Recipient:      "Alice",
		RecipientEmail: "alice@example.com",
		ReservationID:  "r1",
		WorkspaceID:    "w1",
		StartDateTime:  &start,
	}))

	select {
	case raw := <-client.Send:
		var msg websocket.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, websocket.TypeReservationConfirmed, msg.Type)

		var payload websocket.ReservationConfirmedPayload
		require.NoError(t, msg.UnmarshalPayload(&payload))
		assert.Equal(t, "r1", payload.ReservationID)
		assert.Equal(t, "Alice", payload.CustomerName)
	case <-time.After(time.Second):
		t.Fatal("no push received")
	}

	assert.NoError(t, sink.Deliver(context.Background(), &domain.Notification{Kind: domain.NotificationReservationConfirmed}))
	assert.Error(t, sink.Deliver(context.Background(), &domain.Notification{Kind: "unknown"}))
}

type memNotificationRepo struct {
	saved []*domain.Notification
}

func (m *memNotificationRepo) Save(_ context.Context, n *domain.Notification) error {
	m.saved = append(m.saved, n)
	return nil
}

func (m *memNotificationRepo) ListByUser(_ context.Context, userID string) ([]*domain.Notification, error) {
	return m.saved, nil
}

func TestStoreSink_SkipsAnonymous(t *testing.T) {
	repo := &memNotificationRepo{}
	sink := NewStoreSink(repo)

	require.NoError(t, sink.Deliver(context.Background(), &domain.Notification{ID: "n1"}))
	require.NoError(t, sink.Deliver(context.Background(), &domain.Notification{ID: "n2", UserID: "u1"}))

	require.Len(t, repo.saved, 1)
	assert.Equal(t, "n2", repo.saved[0].ID)
}

func TestLogSink(t *testing.T) {
	sink := NewLogSink(zerolog.New(io.Discard))
	assert.Equal(t, "mail_log", sink.Name())
	assert.NoError(t, sink.Deliver(context.Background(), &domain.Notification{ID: "n1", Message: "hello"}))
}
