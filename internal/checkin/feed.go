// Package checkin holds the live check-in state: the in-memory
// projection of per-(attendee, station) status, the transition engine
// that validates and writes changes, and the reconciler that folds the
// row store's change feed back into the projection.
package checkin

import (
	"context"

	"checkpoint-backend/internal/domain"
)

// ConnState is the change feed's connection state.
type ConnState string

const (
	StateConnecting   ConnState = "CONNECTING"
	StateSubscribed   ConnState = "SUBSCRIBED"
	StateChannelError ConnState = "CHANNEL_ERROR"
	StateTimedOut     ConnState = "TIMED_OUT"
)

// Degraded reports whether the state means events may be missed.
func (s ConnState) Degraded() bool {
	return s == StateChannelError || s == StateTimedOut
}

// ChangeFeed is the row store's change-notification feed. Run blocks
// until ctx is done, reconnecting internally; observed row changes
// arrive on Events in server-commit order per key, connection-state
// transitions on States.
type ChangeFeed interface {
	Run(ctx context.Context) error
	Events() <-chan domain.ChangeEvent
	States() <-chan ConnState
}
