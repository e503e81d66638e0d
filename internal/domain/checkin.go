package domain

import "time"

// StatusKey identifies one (attendee, station) check-in slot.
type StatusKey struct {
	AttendeeID uint `json:"attendee_id"`
	StationID  uint `json:"station_id"`
}

// CheckInStatus is the state of one slot. A nil CheckedAt means the
// attendee has not passed the station; Quantity then defaults to 1 and
// carries no meaning.
type CheckInStatus struct {
	CheckedAt *time.Time `json:"checked_at"`
	Quantity  int        `json:"quantity"`
}

// Checked reports whether passage has been granted.
func (s CheckInStatus) Checked() bool {
	return s.CheckedAt != nil
}

// Unchecked is the default state of a slot with no row.
func Unchecked() CheckInStatus {
	return CheckInStatus{CheckedAt: nil, Quantity: 1}
}

// ChangeEventType mirrors the row store's notification event types.
type ChangeEventType string

const (
	EventInsert ChangeEventType = "INSERT"
	EventUpdate ChangeEventType = "UPDATE"
	EventDelete ChangeEventType = "DELETE"
)

// ChangeEvent is one observed row change on the status or station
// relations, as delivered by the change feed.
type ChangeEvent struct {
	Type       ChangeEventType `json:"type"`
	Table      string          `json:"table"`
	AttendeeID uint            `json:"attendee_id"`
	StationID  uint            `json:"station_id"`
	CheckedAt  *time.Time      `json:"checked_at"`
	Quantity   int             `json:"quantity"`
}

// Key returns the slot the event addresses.
func (e ChangeEvent) Key() StatusKey {
	return StatusKey{AttendeeID: e.AttendeeID, StationID: e.StationID}
}

// Status normalizes the event into the state to store. Deletes fold
// into the unchecked default rather than a distinct removal state.
func (e ChangeEvent) Status() CheckInStatus {
	if e.Type == EventDelete || e.CheckedAt == nil {
		return Unchecked()
	}

	qty := e.Quantity
	if qty < 1 {
		qty = 1
	}

	return CheckInStatus{CheckedAt: e.CheckedAt, Quantity: qty}
}
