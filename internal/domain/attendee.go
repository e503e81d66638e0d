package domain

import "time"

// Attendee is a registered record, one per family/party. Quantity is the
// party size; Ages, when recorded, has exactly Quantity entries.
type Attendee struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	RecordNumber string    `json:"record_number"`
	Governorate  string    `json:"governorate"`
	District     string    `json:"district"`
	Area         string    `json:"area"`
	Phone        *string   `json:"phone"`
	Quantity     int       `json:"quantity"`
	Ages         []int     `json:"ages,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AttendeeWithStatus joins an attendee with its per-station check-in
// statuses for rendering the roster.
type AttendeeWithStatus struct {
	Attendee
	StationStatuses map[uint]CheckInStatus `json:"station_statuses"`
}

// AttendeeFilter narrows a roster page. Patterns are fuzzy search
// substrings ORed over name, record number and phone; the location
// fields are exact matches ANDed on top. SortKey is one of name,
// record_number, governorate, district, area or quantity; anything
// else falls back to record_number.
type AttendeeFilter struct {
	Patterns    []string
	Governorate string
	District    string
	Area        string

	SortKey  string
	SortDesc bool

	Offset int
	Limit  int
}
