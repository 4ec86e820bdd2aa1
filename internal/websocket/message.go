package websocket

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrMalformedMessage   = errors.New("invalid message")
	ErrUnsupportedMessage = errors.New("unsupported message type")
)

type MessageType string

const (
	TypeReservationConfirmed MessageType = "reservation_confirmed"
	TypeWorkspaceCreated     MessageType = "workspace_created"
	TypeError                MessageType = "error"
	TypePing                 MessageType = "ping"
	TypePong                 MessageType = "pong"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type ReservationConfirmedPayload struct {
	ReservationID string    `json:"reservation_id"`
	WorkspaceID   string    `json:"workspace_id"`
	CustomerName  string    `json:"customer_name"`
	Start         time.Time `json:"start_date_time"`
	End           time.Time `json:"end_date_time"`
	Message       string    `json:"message"`
}

type WorkspaceCreatedPayload struct {
	WorkspaceID string `json:"workspace_id"`
	Message     string `json:"message"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}

// ParseInbound decodes a client frame. Clients may only send pings; every
// other frame is rejected.
func ParseInbound(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type == "" {
		return nil, ErrMalformedMessage
	}

	switch msg.Type {
	case TypePing:
		return &msg, nil
	default:
		return nil, ErrUnsupportedMessage
	}
}
