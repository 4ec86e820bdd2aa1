package domain

import "time"

type NotificationKind string

const (
	NotificationReservationConfirmed NotificationKind = "reservation_confirmed"
	NotificationWorkspaceCreated     NotificationKind = "workspace_created"
)

type Notification struct {
	ID             string           `json:"id"`
	Kind           NotificationKind `json:"kind"`
	UserID         string           `json:"user_id,omitempty"`
	Recipient      string           `json:"recipient"`
	RecipientEmail string           `json:"recipient_email,omitempty"`
	ReservationID  string           `json:"reservation_id,omitempty"`
	WorkspaceID    string           `json:"workspace_id"`
	StartDateTime  *time.Time       `json:"start_date_time,omitempty"`
	EndDateTime    *time.Time       `json:"end_date_time,omitempty"`
	Message        string           `json:"message"`
	CreatedAt      time.Time        `json:"created_at"`
}
