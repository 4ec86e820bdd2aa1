package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"coworking-reservation-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

const (
	notificationDocType  = "notification"
	notificationIDPrefix = "notification:"
)

type NotificationRepository interface {
	Save(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error)
}

// CouchDBNotificationRepository keeps the delivered-confirmation log as
// CouchDB documents.
type CouchDBNotificationRepository struct {
	db *kivik.DB
}

type notificationDoc struct {
	ID             string `json:"_id"`
	Rev            string `json:"_rev,omitempty"`
	DocType        string `json:"doc_type"`
	Kind           string `json:"kind"`
	UserID         string `json:"user_id,omitempty"`
	Recipient      string `json:"recipient"`
	RecipientEmail string `json:"recipient_email,omitempty"`
	ReservationID  string `json:"reservation_id,omitempty"`
	WorkspaceID    string `json:"workspace_id"`
	StartDateTime  string `json:"start_date_time,omitempty"`
	EndDateTime    string `json:"end_date_time,omitempty"`
	Message        string `json:"message"`
	CreatedAt      string `json:"created_at"`
}

func NewNotificationRepository(client *kivik.Client, dbName string) *CouchDBNotificationRepository {
	return &CouchDBNotificationRepository{
		db: client.DB(dbName),
	}
}

// EnsureCouchDB creates dbName when it does not exist yet.
func EnsureCouchDB(ctx context.Context, client *kivik.Client, dbName string) error {
	exists, err := client.DBExists(ctx, dbName)
	if err != nil {
		return storageErr("check notification database", err)
	}
	if exists {
		return nil
	}
	if err := client.CreateDB(ctx, dbName); err != nil {
		return storageErr("create notification database", err)
	}
	return nil
}

func (r *CouchDBNotificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	doc := notificationDoc{
		ID:             notificationIDPrefix + n.ID,
		DocType:        notificationDocType,
		Kind:           string(n.Kind),
		UserID:         n.UserID,
		Recipient:      n.Recipient,
		RecipientEmail: n.RecipientEmail,
		ReservationID:  n.ReservationID,
		WorkspaceID:    n.WorkspaceID,
		StartDateTime:  formatOptionalTime(n.StartDateTime),
		EndDateTime:    formatOptionalTime(n.EndDateTime),
		Message:        n.Message,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	if _, err := r.db.Put(ctx, doc.ID, doc); err != nil {
		if kivik.HTTPStatus(err) == 409 {
			return nil
		}
		return storageErr("save notification", err)
	}
	return nil
}

func (r *CouchDBNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type": notificationDocType,
			"user_id":  userID,
		},
	}

	rows := r.db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, storageErr("query notifications", err)
	}
	defer rows.Close()

	notifications := []*domain.Notification{}
	for rows.Next() {
		var doc notificationDoc
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, storageErr("scan notification", err)
		}

		n, err := docToNotification(&doc)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("query notifications", err)
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func docToNotification(doc *notificationDoc) (*domain.Notification, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	start, err := parseOptionalTime(doc.StartDateTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start_date_time: %w", err)
	}
	end, err := parseOptionalTime(doc.EndDateTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end_date_time: %w", err)
	}

	return &domain.Notification{
		ID:             strings.TrimPrefix(doc.ID, notificationIDPrefix),
		Kind:           domain.NotificationKind(doc.Kind),
		UserID:         doc.UserID,
		Recipient:      doc.Recipient,
		RecipientEmail: doc.RecipientEmail,
		ReservationID:  doc.ReservationID,
		WorkspaceID:    doc.WorkspaceID,
		StartDateTime:  start,
		EndDateTime:    end,
		Message:        doc.Message,
		CreatedAt:      createdAt,
	}, nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
