// Package feed implements the change-notification feed over Postgres
// LISTEN/NOTIFY. Triggers on the status and station tables (installed
// by the dao package) publish one JSON payload per row change; this
// listener turns them into domain.ChangeEvent values in delivery order.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"checkpoint-backend/internal/checkin"
	"checkpoint-backend/internal/domain"
)

// Channel is the NOTIFY channel the table triggers publish on.
const Channel = "checkpoint_changes"

type payload struct {
	Table      string     `json:"table"`
	Type       string     `json:"type"`
	AttendeeID uint       `json:"attendee_id"`
	StationID  uint       `json:"station_id"`
	CheckedAt  *time.Time `json:"checked_at"`
	Quantity   int        `json:"quantity"`
}

// Postgres is a checkin.ChangeFeed backed by a dedicated pgx
// connection. Run reconnects with doubling backoff and reports its
// state transitions on States.
type Postgres struct {
	connString string

	events chan domain.ChangeEvent
	states chan checkin.ConnState

	subscribeTimeout time.Duration
	reconnectBase    time.Duration
	reconnectMax     time.Duration
}

func NewPostgres(connString string) *Postgres {
	return &Postgres{
		connString:       connString,
		events:           make(chan domain.ChangeEvent, 256),
		states:           make(chan checkin.ConnState, 16),
		subscribeTimeout: 10 * time.Second,
		reconnectBase:    time.Second,
		reconnectMax:     30 * time.Second,
	}
}

func (f *Postgres) Events() <-chan domain.ChangeEvent { return f.events }

func (f *Postgres) States() <-chan checkin.ConnState { return f.states }

// Run blocks until ctx is done, maintaining the subscription. A
// connection that cannot reach LISTEN within the subscribe timeout is
// reported as TIMED_OUT; a dropped subscription as CHANNEL_ERROR.
// Either way the loop backs off and reconnects.
func (f *Postgres) Run(ctx context.Context) error {
	delay := f.reconnectBase

	for {
		f.setState(checkin.StateConnecting)

		conn, err := f.subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if errors.Is(err, context.DeadlineExceeded) {
				f.setState(checkin.StateTimedOut)
			} else {
				f.setState(checkin.StateChannelError)
			}
			zap.L().Warn("change feed subscribe failed", zap.Error(err))

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			if delay *= 2; delay > f.reconnectMax {
				delay = f.reconnectMax
			}

			continue
		}

		delay = f.reconnectBase
		f.setState(checkin.StateSubscribed)

		err = f.listen(ctx, conn)
		_ = conn.Close(context.Background())
		if ctx.Err() != nil {
			return ctx.Err()
		}

		f.setState(checkin.StateChannelError)
		zap.L().Warn("change feed connection lost", zap.Error(err))
	}
}

func (f *Postgres) subscribe(ctx context.Context) (*pgx.Conn, error) {
	subCtx, cancel := context.WithTimeout(ctx, f.subscribeTimeout)
	defer cancel()

	conn, err := pgx.Connect(subCtx, f.connString)
	if err != nil {
		return nil, err
	}

	if _, err = conn.Exec(subCtx, "LISTEN "+Channel); err != nil {
		_ = conn.Close(context.Background())
		return nil, err
	}

	return conn, nil
}

func (f *Postgres) listen(ctx context.Context, conn *pgx.Conn) error {
	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var p payload
		if err = json.Unmarshal([]byte(notification.Payload), &p); err != nil {
			zap.L().Warn("malformed change payload",
				zap.String("payload", notification.Payload),
				zap.Error(err))
			continue
		}

		event := domain.ChangeEvent{
			Type:       domain.ChangeEventType(p.Type),
			Table:      p.Table,
			AttendeeID: p.AttendeeID,
			StationID:  p.StationID,
			CheckedAt:  p.CheckedAt,
			Quantity:   p.Quantity,
		}

		select {
		case f.events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Postgres) setState(s checkin.ConnState) {
	select {
	case f.states <- s:
	default:
		// A slow consumer only misses intermediate transitions.
	}
}
