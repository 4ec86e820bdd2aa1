// Package notification delivers reservation and workspace confirmations
// outside the request path. Delivery is best-effort: a full queue or a
// failing sink is logged and counted, never reported to the caller that
// produced the event.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrClosed    = errors.New("notification dispatcher closed")
)

// Sink is one delivery channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n *domain.Notification) error
}

// RecipientResolver looks up the account behind a reservation.
type RecipientResolver interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Options struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

type Dispatcher struct {
	queue      chan *domain.Notification
	sinks      []Sink
	recipients RecipientResolver
	workers    int
	timeout    time.Duration
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(opts Options, recipients RecipientResolver, logger zerolog.Logger, sinks ...Sink) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	return &Dispatcher{
		queue:      make(chan *domain.Notification, opts.QueueSize),
		sinks:      sinks,
		recipients: recipients,
		workers:    opts.Workers,
		timeout:    opts.Timeout,
		logger:     logger.With().Str("component", "notification_dispatcher").Logger(),
	}
}

// Start launches the delivery workers. They exit after Close drains the queue.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

// Close stops intake and waits for queued notifications to be delivered or
// for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) NotifyReservationConfirmed(_ context.Context, r *domain.Reservation) error {
	start, end := r.StartDateTime, r.EndDateTime
	return d.enqueue(&domain.Notification{
		ID:            uuid.New().String(),
		Kind:          domain.NotificationReservationConfirmed,
		UserID:        r.UserID,
		Recipient:     r.CustomerName,
		ReservationID: r.ID,
		WorkspaceID:   r.WorkspaceID,
		StartDateTime: &start,
		EndDateTime:   &end,
		Message: fmt.Sprintf("Reservation %s confirmed for %s on workspace %s from %s to %s.",
			r.ID, r.CustomerName, r.WorkspaceID,
			start.Format(time.RFC3339), end.Format(time.RFC3339)),
		CreatedAt: time.Now().UTC(),
	})
}

func (d *Dispatcher) NotifyWorkspaceCreated(_ context.Context, ws *domain.Workspace) error {
	return d.enqueue(&domain.Notification{
		ID:          uuid.New().String(),
		Kind:        domain.NotificationWorkspaceCreated,
		WorkspaceID: ws.ID,
		Message:     fmt.Sprintf("Workspace %s (%s) is now available at %s.", ws.ID, ws.Type, ws.Price.StringFixed(2)),
		CreatedAt:   time.Now().UTC(),
	})
}

func (d *Dispatcher) enqueue(n *domain.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.IncNotificationDropped("closed")
		return ErrClosed
	}

	select {
	case d.queue <- n:
		return nil
	default:
		metrics.IncNotificationDropped("queue_full")
		return ErrQueueFull
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n *domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	d.resolveRecipient(ctx, n)

	for _, sink := range d.sinks {
		if err := d.deliverTo(ctx, sink, n); err != nil {
			metrics.IncNotificationDropped(sink.Name())
			d.logger.Warn().
				Err(err).
				Str("sink", sink.Name()).
				Str("notification_id", n.ID).
				Str("kind", string(n.Kind)).
				Msg("notification delivery failed")
		}
	}
}

func (d *Dispatcher) deliverTo(ctx context.Context, sink Sink, n *domain.Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return sink.Deliver(ctx, n)
}

func (d *Dispatcher) resolveRecipient(ctx context.Context, n *domain.Notification) {
	if d.recipients == nil || n.UserID == "" {
		return
	}
	user, err := d.recipients.GetByID(ctx, n.UserID)
	if err != nil {
		d.logger.Debug().Err(err).Str("user_id", n.UserID).Msg("recipient lookup failed, no email address")
		return
	}
	n.RecipientEmail = user.Email
}
