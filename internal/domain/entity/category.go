package entity

import "time"

// Category agrupa productos (analgésicos, antibióticos, etc.).
type Category struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
