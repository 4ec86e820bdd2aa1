package notification

import (
	"context"
	"errors"

	"coworking-reservation-server/internal/domain"
	"coworking-reservation-server/internal/repository"
	"coworking-reservation-server/internal/websocket"

	"github.com/rs/zerolog"
)

// LogSink stands in for outbound mail: it records what would be sent.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "mail").Logger()}
}

func (s *LogSink) Name() string { return "mail_log" }

func (s *LogSink) Deliver(_ context.Context, n *domain.Notification) error {
	to := n.RecipientEmail
	if to == "" {
		to = n.Recipient
	}
	s.logger.Info().
		Str("notification_id", n.ID).
		Str("kind", string(n.Kind)).
		Str("to", to).
		Str("reservation_id", n.ReservationID).
		Str("workspace_id", n.WorkspaceID).
		Msg(n.Message)
	return nil
}

// WebSocketSink pushes reservation confirmations to the booking user's open
// connections and workspace announcements to everyone.
type WebSocketSink struct {
	manager *websocket.Manager
}

func NewWebSocketSink(manager *websocket.Manager) *WebSocketSink {
	return &WebSocketSink{manager: manager}
}

func (s *WebSocketSink) Name() string { return "websocket" }

func (s *WebSocketSink) Deliver(_ context.Context, n *domain.Notification) error {
	switch n.Kind {
	case domain.NotificationReservationConfirmed:
		if n.UserID == "" {
			return nil
		}
		payload := &websocket.ReservationConfirmedPayload{
			ReservationID: n.ReservationID,
			WorkspaceID:   n.WorkspaceID,
			CustomerName:  n.Recipient,
			Message:       n.Message,
		}
		if n.StartDateTime != nil {
			payload.Start = *n.StartDateTime
		}
		if n.EndDateTime != nil {
			payload.End = *n.EndDateTime
		}
		msg, err := websocket.NewMessage(websocket.TypeReservationConfirmed, payload)
		if err != nil {
			return err
		}
		return s.manager.BroadcastToUser(n.UserID, msg)

	case domain.NotificationWorkspaceCreated:
		msg, err := websocket.NewMessage(websocket.TypeWorkspaceCreated, &websocket.WorkspaceCreatedPayload{
			WorkspaceID: n.WorkspaceID,
			Message:     n.Message,
		})
		if err != nil {
			return err
		}
		return s.manager.Broadcast(msg)

	default:
		return errors.New("unknown notification kind")
	}
}

// StoreSink appends reservation confirmations to the notification log so
// customers can list them later.
type StoreSink struct {
	repo repository.NotificationRepository
}

func NewStoreSink(repo repository.NotificationRepository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Deliver(ctx context.Context, n *domain.Notification) error {
	if n.UserID == "" {
		return nil
	}
	return s.repo.Save(ctx, n)
}
