package domain

import "time"

// Station is a checkpoint an attendee passes through. At most one
// station carries IsMain; it gates all others for ordinary operators.
type Station struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	IsEnabled bool      `json:"is_enabled"`
	IsMain    bool      `json:"is_main"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
