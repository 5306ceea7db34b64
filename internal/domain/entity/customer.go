package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente de la farmacia (programa de fidelización).
type Customer struct {
	ID            int64
	FirstName     string
	LastName      string
	Phone         string
	Email         string
	LoyaltyPoints int
	TotalSpent    decimal.Decimal
	LastVisit     *time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
