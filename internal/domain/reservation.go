package domain

import "time"

type ReservationStatus string

// PENDING and REJECTED exist only in memory while a request is evaluated;
// a stored reservation is either ACTIVE or CANCELLED.
const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationRejected  ReservationStatus = "REJECTED"
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether i and o share any instant. Touching endpoints do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Valid reports whether Start is strictly before End.
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

type Reservation struct {
	ID            string    `json:"id"`
	WorkspaceID   string    `json:"workspace_id"`
	UserID        string    `json:"user_id,omitempty"`
	CustomerName  string    `json:"customer_name"`
	StartDateTime time.Time `json:"start_date_time"`
	EndDateTime   time.Time `json:"end_date_time"`
	CreatedAt     time.Time `json:"created_at"`
	Active        bool      `json:"active"`
}

func (r *Reservation) Interval() Interval {
	return Interval{Start: r.StartDateTime, End: r.EndDateTime}
}

func (r *Reservation) Status() ReservationStatus {
	if r.Active {
		return ReservationActive
	}
	return ReservationCancelled
}

type CreateReservationRequest struct {
	WorkspaceID   string     `json:"workspace_id"`
	CustomerName  string     `json:"customer_name" validate:"omitempty,max=100"`
	StartDateTime *time.Time `json:"start_date_time"`
	EndDateTime   *time.Time `json:"end_date_time"`
}

type ReservationResponse struct {
	*Reservation
	Status ReservationStatus `json:"status"`
}

func NewReservationResponse(r *Reservation) *ReservationResponse {
	return &ReservationResponse{Reservation: r, Status: r.Status()}
}

func NewReservationResponses(rs []*Reservation) []*ReservationResponse {
	out := make([]*ReservationResponse, len(rs))
	for i, r := range rs {
		out[i] = NewReservationResponse(r)
	}
	return out
}
