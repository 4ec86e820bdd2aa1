package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const MaxWorkspaceTypeLength = 50

type Workspace struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`

	// Reservations is populated only by loads that ask for it; it is never
	// stored as part of the workspace row.
	Reservations []*Reservation `json:"-"`
}

type CreateWorkspaceRequest struct {
	Type  string           `json:"type" validate:"required,max=50"`
	Price *decimal.Decimal `json:"price" validate:"required"`
}
